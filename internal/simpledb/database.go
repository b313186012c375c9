package simpledb

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Database is the single table store behind the REPL. It validates
// records before they reach the B-tree.
type Database struct {
	Name   string
	pager  *pagerImpl
	table  *Table
	logger *zap.Logger
}

// Open opens or creates the database file at dbFilePath.
func Open(ctx context.Context, logger *zap.Logger, dbFilePath string) (*Database, error) {
	dbFile, err := os.OpenFile(dbFilePath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}

	aPager, err := NewPager(dbFile, logger)
	if err != nil {
		dbFile.Close()
		return nil, fmt.Errorf("failed to create pager: %w", err)
	}

	aDatabase, err := NewDatabase(ctx, logger, dbFilePath, aPager)
	if err != nil {
		dbFile.Close()
		return nil, err
	}
	return aDatabase, nil
}

func NewDatabase(ctx context.Context, logger *zap.Logger, name string, aPager *pagerImpl) (*Database, error) {
	aTable, err := NewTable(ctx, logger, aPager)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}

	logger.Sugar().With(
		"name", name,
		"total_pages", int(aPager.TotalPages()),
	).Debug("opened database")

	return &Database{
		Name:   name,
		pager:  aPager,
		table:  aTable,
		logger: logger,
	}, nil
}

// Insert stores a new record keyed by its id.
func (d *Database) Insert(ctx context.Context, id uint32, username, email string) error {
	aRow, err := NewRow(id, username, email)
	if err != nil {
		return err
	}
	return d.table.Insert(ctx, id, aRow)
}

func (d *Database) Select(ctx context.Context) (*Iterator, error) {
	return d.table.Select(ctx)
}

func (d *Database) Find(ctx context.Context, id uint32) (*Cursor, error) {
	return d.table.Find(ctx, id)
}

func (d *Database) Table() *Table {
	return d.table
}

// Close flushes every cached page and closes the file.
func (d *Database) Close() error {
	return d.pager.Close()
}

type Constant struct {
	Name  string
	Value int
}

// Constants lists the storage layout constants.
func Constants() []Constant {
	return []Constant{
		{Name: "ROW_SIZE", Value: RowSize},
		{Name: "COMMON_NODE_HEADER_SIZE", Value: CommonNodeHeaderSize},
		{Name: "LEAF_NODE_HEADER_SIZE", Value: LeafNodeHeaderSize},
		{Name: "LEAF_NODE_CELL_SIZE", Value: LeafNodeCellSize},
		{Name: "LEAF_NODE_SPACE_FOR_CELLS", Value: LeafNodeSpaceForCells},
		{Name: "LEAF_NODE_MAX_CELLS", Value: LeafNodeMaxCells},
		{Name: "INTERNAL_NODE_MAX_CELLS", Value: InternalNodeMaxCells},
	}
}

// PrintTree writes an indented dump of the B-tree, one line per node,
// separator and key.
func (d *Database) PrintTree(ctx context.Context, w io.Writer) error {
	return d.table.Walk(ctx, func(aPage *Page, depth int) error {
		indent := strings.Repeat("  ", depth)
		if aPage.LeafNode != nil {
			fmt.Fprintf(w, "%s- leaf %d (size %d)\n", indent, aPage.Index, aPage.LeafNode.Header.Cells)
			for _, key := range aPage.LeafNode.Keys() {
				fmt.Fprintf(w, "%s  - %d\n", indent, key)
			}
			return nil
		}
		fmt.Fprintf(w, "%s- internal %d (size %d, keys %v)\n", indent, aPage.Index, aPage.InternalNode.Header.KeysNum, aPage.InternalNode.Keys())
		return nil
	})
}
