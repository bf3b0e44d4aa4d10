// pkg/cli/repl.go
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pstiasny/inverted-index/pkg/db"
	"github.com/pstiasny/inverted-index/pkg/sexpr"
)

// Prompt is printed before each input line.
const Prompt = "ii> "

// REPL reads commands line by line, interprets them and prints results.
// Parse and command errors are printed and the loop continues; I/O and
// corruption errors end the loop.
type REPL struct {
	interp *Interpreter
	in     *bufio.Reader
	out    io.Writer
}

// NewREPL creates a REPL over database d with the given input and output
// streams.
func NewREPL(d *db.DB, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		interp: NewInterpreter(d, out),
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Run executes the loop until (exit), end of input, or a fatal error.
func (r *REPL) Run() error {
	for {
		fmt.Fprint(r.out, Prompt)

		line, err := r.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		exit, err := r.execute(line)
		if exit || err != nil {
			return err
		}
	}
}

// execute parses and interprets one input line. Recoverable errors are
// printed and swallowed.
func (r *REPL) execute(line string) (exit bool, err error) {
	expr, err := sexpr.Parse(line)
	if err != nil {
		var parseErr *sexpr.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprintf(r.out, "PARSE ERROR %s\n", parseErr.Msg)
			return false, nil
		}
		return false, err
	}

	exit, err = r.interp.Interpret(expr)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			fmt.Fprintf(r.out, "COMMAND ERROR %s\n", cmdErr.Msg)
			return false, nil
		}
		return false, err
	}
	return exit, nil
}
