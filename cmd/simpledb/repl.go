package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/codingEzio/SimpleDatabase/internal/pkg/command"
	"github.com/codingEzio/SimpleDatabase/internal/pkg/util"
	"github.com/codingEzio/SimpleDatabase/internal/simpledb"
)

const cliName = "db"

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F56"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9B9B9B"))

	rowColumns = []util.Column{
		{Name: "id", Width: 10},
		{Name: "username", Width: simpledb.UsernameSize},
		{Name: "email", Width: 40},
	}
)

type repl struct {
	db     *simpledb.Database
	out    io.Writer
	logger *zap.Logger
}

func (r *repl) printPrompt() {
	fmt.Fprint(r.out, promptStyle.Render(cliName+" >"), " ")
}

func (r *repl) printError(msg string) {
	fmt.Fprintln(r.out, errorStyle.Render(msg))
}

// handle executes one line of input. It returns false once the session
// should end.
func (r *repl) handle(ctx context.Context, line string) bool {
	aCommand, err := command.Parse(line)
	if err != nil {
		r.printParseError(line, err)
		return true
	}

	switch aCommand.Kind {
	case command.Exit:
		return false
	case command.Help:
		for _, helpLine := range command.HelpText() {
			fmt.Fprintln(r.out, helpLine)
		}
	case command.Constants:
		fmt.Fprintln(r.out, "Constants:")
		for _, aConstant := range simpledb.Constants() {
			fmt.Fprintf(r.out, "%s: %d\n", aConstant.Name, aConstant.Value)
		}
	case command.BTree:
		fmt.Fprintln(r.out, "Tree:")
		if err := r.db.PrintTree(ctx, r.out); err != nil {
			r.printExecuteError(err)
		}
	case command.Insert:
		err := r.db.Insert(ctx, aCommand.ID, aCommand.Username, aCommand.Email)
		if err != nil {
			r.printExecuteError(err)
			return true
		}
		fmt.Fprintln(r.out, mutedStyle.Render("Executed."))
	case command.Select:
		if err := r.printRows(ctx); err != nil {
			r.printExecuteError(err)
			return true
		}
		fmt.Fprintln(r.out, mutedStyle.Render("Executed."))
	}

	return true
}

func (r *repl) printRows(ctx context.Context) error {
	anIterator, err := r.db.Select(ctx)
	if err != nil {
		return err
	}

	util.PrintTableHeader(r.out, rowColumns)
	for anIterator.Next(ctx) {
		aRow := anIterator.Row()
		util.PrintTableRow(r.out, rowColumns, []any{aRow.ID, aRow.Username, aRow.Email})
	}
	util.PrintTableEnd(r.out, rowColumns)

	return anIterator.Err()
}

func (r *repl) printParseError(line string, err error) {
	switch {
	case errors.Is(err, command.ErrEmptyInput):
	case errors.Is(err, command.ErrSyntax):
		r.printError("Syntax error. Could not parse statement.")
	case errors.Is(err, command.ErrUnknownCommand):
		r.printError(fmt.Sprintf("Unrecognized command '%s'.", line))
	default:
		r.printError(fmt.Sprintf("Error: %s", err))
	}
}

func (r *repl) printExecuteError(err error) {
	switch {
	case errors.Is(err, simpledb.ErrDuplicateKey):
		r.printError("Error: Duplicate key.")
	case errors.Is(err, simpledb.ErrFieldTooLong):
		r.printError("String is too long.")
	case errors.Is(err, simpledb.ErrPageOutOfBounds):
		r.printError("Error: Table full.")
	default:
		r.logger.Error("statement failed", zap.Error(err))
		r.printError(fmt.Sprintf("Error: %s", err))
	}
}
