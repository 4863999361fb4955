package main

import (
	"flag"
	"log"
	"os"

	"github.com/rotemdan/entropy-coding/codec"
)

var ans = flag.Bool("ans", false, "the input was compressed with the rANS coder")

func main() {
	flag.Parse()

	var err error
	if *ans {
		err = codec.DecompressANS(os.Stdout, os.Stdin)
	} else {
		err = codec.Decompress(os.Stdout, os.Stdin)
	}
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
