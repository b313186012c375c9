package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Unknown Kind = iota + 1
	Help
	Exit
	Constants
	BTree
	Insert
	Select
)

var (
	ErrEmptyInput     = errors.New("empty input")
	ErrSyntax         = errors.New("syntax error")
	ErrUnknownCommand = errors.New("unknown command")
)

// Command is one parsed REPL line.
type Command struct {
	Kind     Kind
	ID       uint32
	Username string
	Email    string
}

func isMetaCommand(input string) bool {
	return len(input) > 0 && input[:1] == "."
}

func parseMetaCommand(input string) (Command, error) {
	switch strings.ToLower(input) {
	case "help":
		return Command{Kind: Help}, nil
	case "exit":
		return Command{Kind: Exit}, nil
	case "constants":
		return Command{Kind: Constants}, nil
	case "btree":
		return Command{Kind: BTree}, nil
	default:
		return Command{Kind: Unknown}, fmt.Errorf("%w: .%s", ErrUnknownCommand, input)
	}
}

// Parse turns a line of input into a command. Meta commands start with a
// dot, statements are "insert <id> <username> <email>" and "select".
func Parse(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}, ErrEmptyInput
	}

	if isMetaCommand(input) {
		return parseMetaCommand(input[1:])
	}

	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case "select":
		if len(parts) != 1 {
			return Command{}, fmt.Errorf("%w: select takes no arguments", ErrSyntax)
		}
		return Command{Kind: Select}, nil
	case "insert":
		return parseInsert(parts[1:])
	default:
		return Command{Kind: Unknown}, fmt.Errorf("%w: %s", ErrUnknownCommand, parts[0])
	}
}

func parseInsert(args []string) (Command, error) {
	if len(args) != 3 {
		return Command{}, fmt.Errorf("%w: insert <id> <username> <email>", ErrSyntax)
	}

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return Command{}, fmt.Errorf("%w: id must be a non-negative 32-bit integer", ErrSyntax)
	}

	return Command{
		Kind:     Insert,
		ID:       uint32(id),
		Username: args[1],
		Email:    args[2],
	}, nil
}

// HelpText lists the supported commands.
func HelpText() []string {
	return []string{
		"insert <id> <username> <email>  - Insert a row",
		"select                          - Print all rows",
		".constants                      - Print storage constants",
		".btree                          - Print the B-tree",
		".help                           - Show available commands",
		".exit                           - Closes program",
	}
}
