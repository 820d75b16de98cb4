// Command golox runs the Lox interpreter, either against a script file, an inline program passed with -c, or
// interactively as a REPL.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"

	"github.com/chzyer/readline"

	"github.com/marcuscaisey/golox/internal/ast"
	"github.com/marcuscaisey/golox/internal/interp"
	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/parser"
	"github.com/marcuscaisey/golox/internal/scanner"
)

const (
	exitOK          = 0
	exitUsage       = 100
	exitNoInputFile = 101
	exitStaticErr   = 110
	exitRuntimeErr  = 111
)

func main() {
	log.SetFlags(0)
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	switch {
	case fs.cmd != "":
		return runSource(fs.cmd, interp.New(), fs.printAST)
	case len(fs.Args()) == 0:
		return runREPL(fs.printAST)
	case len(fs.Args()) == 1:
		return runFile(fs.Args()[0], fs.printAST)
	default:
		fs.Usage()
		return exitUsage
	}
}

func runFile(path string, printAST bool) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitNoInputFile
	}
	return runSource(string(src), interp.New(), printAST)
}

func runREPL(printAST bool) int {
	cfg := &readline.Config{Prompt: ">>> "}
	if homeDir, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = path.Join(homeDir, ".lox_history")
	} else {
		fmt.Fprintf(os.Stderr, "can't get current user's home directory (%s); command history will not be saved\n", err)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "running Lox REPL: %s\n", err)
		return exitNoInputFile
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, "Welcome to Lox!")

	i := interp.New()
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			panic(fmt.Sprintf("unexpected error from readline: %s", err))
		}
		if line == "" {
			break
		}
		runSource(line, i, printAST)
	}

	return exitOK
}

// runSource scans, parses, and interprets src against i, printing diagnostics to stderr as it goes. It returns
// the process exit code that this run alone would warrant; the REPL ignores it and keeps going.
func runSource(src string, i *interp.Interpreter, printAST bool) int {
	sink := &loxerr.Sink{}

	toks := scanner.New(src, sink).Scan()
	stmts := parser.New(toks, sink).Parse()

	if printAST {
		ast.Print(stmts)
		if sink.HadError() {
			fmt.Fprintln(os.Stderr, sink.Err())
			return exitStaticErr
		}
		return exitOK
	}

	if sink.HadError() {
		fmt.Fprintln(os.Stderr, sink.Err())
		return exitStaticErr
	}

	i.Interpret(stmts, sink)
	if sink.HadError() {
		fmt.Fprintln(os.Stderr, sink.Err())
		if sink.HadStaticError() {
			return exitStaticErr
		}
		return exitRuntimeErr
	}

	return exitOK
}
