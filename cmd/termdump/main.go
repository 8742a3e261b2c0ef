// Package main is a command-line tool that decodes external term
// format bytes from stdin (or a file) and prints the decoded term's
// canonical text form.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/Comcast/sheens/codec"
)

type opts struct {
	file string
	hex  bool
}

func main() {
	o := &opts{}
	flag.StringVar(&o.file, "f", "", "input file (default: stdin)")
	flag.BoolVar(&o.hex, "x", false, "input is hex-encoded rather than raw bytes")
	flag.Parse()

	if err := o.run(); err != nil {
		fmt.Fprintln(os.Stderr, "termdump:", err)
		os.Exit(1)
	}
}

func (o *opts) run() error {
	var (
		raw []byte
		err error
	)
	if o.file != "" {
		raw, err = ioutil.ReadFile(o.file)
	} else {
		raw, err = ioutil.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	if o.hex {
		raw, err = hex.DecodeString(string(raw))
		if err != nil {
			return fmt.Errorf("decode hex input: %w", err)
		}
	}

	t, err := codec.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	fmt.Println(t.String())
	return nil
}
