package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rotemdan/entropy-coding/codec"
)

var ans = flag.Bool("ans", false, "use the rANS coder instead of the arithmetic coder")
var rangeBits = flag.Int("rangebits", 12, "rANS frequency space size in bits")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] filename\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	name := flag.Arg(0)
	if name == "" {
		flag.Usage()
		os.Exit(1)
	}

	var err error
	if *ans {
		err = codec.CompressANS(os.Stdout, name, *rangeBits)
	} else {
		err = codec.Compress(os.Stdout, name)
	}
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
