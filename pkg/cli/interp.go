// pkg/cli/interp.go
// Package cli implements the command layer: an interpreter for parsed
// s-expression commands and the interactive REPL that drives it.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/pstiasny/inverted-index/pkg/db"
	"github.com/pstiasny/inverted-index/pkg/entity"
	"github.com/pstiasny/inverted-index/pkg/inverted"
	"github.com/pstiasny/inverted-index/pkg/sexpr"
)

// CommandError reports a well-formed expression that is not a valid
// command: wrong verb, wrong arity, wrong argument kind, or a duplicate
// entity id.
type CommandError struct {
	Msg string
}

func (e *CommandError) Error() string {
	return e.Msg
}

// Interpreter executes parsed commands against a database, writing command
// output to out.
type Interpreter struct {
	db  *db.DB
	out io.Writer
}

// NewInterpreter creates an interpreter over database d writing to out.
func NewInterpreter(d *db.DB, out io.Writer) *Interpreter {
	return &Interpreter{db: d, out: out}
}

// Interpret executes one command. It returns exit=true for (exit);
// a *CommandError for invalid commands; any other error is fatal.
func (i *Interpreter) Interpret(e sexpr.Expr) (exit bool, err error) {
	root, ok := e.(sexpr.List)
	if !ok {
		return false, &CommandError{Msg: "Expected a list"}
	}
	if len(root) == 0 {
		return false, &CommandError{Msg: "Expected a command, got empty list"}
	}

	command, err := getSymbol(root[0])
	if err != nil {
		return false, err
	}
	arity := len(root) - 1

	switch {
	case command == "exit" && arity == 0:
		return true, nil
	case command == "add" && arity == 2:
		return false, i.add(root)
	case command == "query" && arity >= 1:
		return false, i.query(root)
	case command == "get" && arity == 1:
		return false, i.get(root)
	default:
		return false, &CommandError{Msg: fmt.Sprintf("Unknown command: %s(%d)", command, arity)}
	}
}

func (i *Interpreter) add(args sexpr.List) error {
	id, err := getString(args[1])
	if err != nil {
		return err
	}
	content, err := getString(args[2])
	if err != nil {
		return err
	}

	err = i.db.Add(&entity.Entity{ID: id, Content: content})
	if errors.Is(err, db.ErrEntityExists) {
		return &CommandError{Msg: "Entity exists"}
	}
	return err
}

func (i *Interpreter) query(args sexpr.List) error {
	term, err := getString(args[1])
	if err != nil {
		return err
	}
	var q inverted.Query = inverted.Term{T: term}
	for _, arg := range args[2:] {
		term, err := getString(arg)
		if err != nil {
			return err
		}
		q = inverted.And{L: inverted.Term{T: term}, R: q}
	}

	for _, id := range i.db.Query(q) {
		fmt.Fprintln(i.out, id)
	}
	return nil
}

func (i *Interpreter) get(args sexpr.List) error {
	id, err := getString(args[1])
	if err != nil {
		return err
	}

	e, err := i.db.Get(id)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(i.out, e.Content)
	return nil
}

func getSymbol(e sexpr.Expr) (string, error) {
	s, ok := e.(sexpr.Symbol)
	if !ok {
		return "", &CommandError{Msg: "Expected a symbol"}
	}
	return string(s), nil
}

func getString(e sexpr.Expr) (string, error) {
	s, ok := e.(sexpr.String)
	if !ok {
		return "", &CommandError{Msg: "Expected a string"}
	}
	return string(s), nil
}
