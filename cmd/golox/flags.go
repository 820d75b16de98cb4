package main

import (
	"flag"
	"fmt"
	"os"
)

// flagSet wraps flag.FlagSet with golox's two command-line options.
type flagSet struct {
	*flag.FlagSet
	cmd      string
	printAST bool
}

func newFlagSet() *flagSet {
	fs := &flagSet{FlagSet: flag.NewFlagSet("golox", flag.ContinueOnError)}
	fs.StringVar(&fs.cmd, "c", "", "program passed in as a string")
	fs.BoolVar(&fs.printAST, "p", false, "print the parsed AST instead of running the program")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: golox [options] [script]")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
	}
	return fs
}
