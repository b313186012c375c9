package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name     string
		Input    string
		Expected Command
		Err      error
	}{
		{
			Name:  "Empty input",
			Input: "   ",
			Err:   ErrEmptyInput,
		},
		{
			Name:     "Help",
			Input:    ".help",
			Expected: Command{Kind: Help},
		},
		{
			Name:     "Exit is case insensitive",
			Input:    ".EXIT",
			Expected: Command{Kind: Exit},
		},
		{
			Name:     "Constants",
			Input:    ".constants",
			Expected: Command{Kind: Constants},
		},
		{
			Name:     "BTree",
			Input:    " .btree ",
			Expected: Command{Kind: BTree},
		},
		{
			Name:     "Unknown meta command",
			Input:    ".tables",
			Expected: Command{Kind: Unknown},
			Err:      ErrUnknownCommand,
		},
		{
			Name:     "Select",
			Input:    "SELECT",
			Expected: Command{Kind: Select},
		},
		{
			Name:  "Select with arguments",
			Input: "select *",
			Err:   ErrSyntax,
		},
		{
			Name:  "Insert",
			Input: "insert 1 john john@example.com",
			Expected: Command{
				Kind:     Insert,
				ID:       1,
				Username: "john",
				Email:    "john@example.com",
			},
		},
		{
			Name:  "Insert keeps argument case",
			Input: "Insert 42 JohnDoe John@Example.com",
			Expected: Command{
				Kind:     Insert,
				ID:       42,
				Username: "JohnDoe",
				Email:    "John@Example.com",
			},
		},
		{
			Name:  "Insert with missing arguments",
			Input: "insert 1 john",
			Err:   ErrSyntax,
		},
		{
			Name:  "Insert with negative id",
			Input: "insert -1 john john@example.com",
			Err:   ErrSyntax,
		},
		{
			Name:  "Insert with id overflowing 32 bits",
			Input: "insert 4294967296 john john@example.com",
			Err:   ErrSyntax,
		},
		{
			Name:     "Unknown statement",
			Input:    "delete 1",
			Expected: Command{Kind: Unknown},
			Err:      ErrUnknownCommand,
		},
	}

	for _, aTestCase := range testCases {
		t.Run(aTestCase.Name, func(t *testing.T) {
			aCommand, err := Parse(aTestCase.Input)
			if aTestCase.Err != nil {
				require.ErrorIs(t, err, aTestCase.Err)
				assert.Equal(t, aTestCase.Expected, aCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, aTestCase.Expected, aCommand)
		})
	}
}
