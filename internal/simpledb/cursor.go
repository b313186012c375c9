package simpledb

import (
	"context"
	"fmt"
)

// Cursor points at a cell of a leaf. It is only valid until the next
// insert because splits move cells between pages.
type Cursor struct {
	Table      *Table
	PageIdx    PageIndex
	CellIdx    uint32
	EndOfTable bool
}

// Value decodes the row under the cursor.
func (c *Cursor) Value(ctx context.Context) (Row, error) {
	if c.EndOfTable {
		return Row{}, ErrNoMoreRows
	}
	aPage, err := c.Table.readPage(ctx, c.PageIdx)
	if err != nil {
		return Row{}, fmt.Errorf("cursor value: %w", err)
	}
	if aPage.LeafNode == nil {
		return Row{}, fmt.Errorf("cursor value: page %d is not a leaf", c.PageIdx)
	}
	if c.CellIdx >= aPage.LeafNode.Header.Cells {
		return Row{}, fmt.Errorf("cursor value: cell %d out of %d cells", c.CellIdx, aPage.LeafNode.Header.Cells)
	}
	return aPage.LeafNode.Cells[c.CellIdx].Value, nil
}

// Advance moves the cursor to the next cell, following the leaf chain
// once the current leaf is exhausted.
func (c *Cursor) Advance(ctx context.Context) error {
	if c.EndOfTable {
		return nil
	}
	aPage, err := c.Table.readPage(ctx, c.PageIdx)
	if err != nil {
		return fmt.Errorf("cursor advance: %w", err)
	}

	c.CellIdx += 1
	for c.CellIdx >= aPage.LeafNode.Header.Cells {
		// If there is no leaf page to the right, set end of table flag and return
		if aPage.LeafNode.Header.NextLeaf == NoNextLeaf {
			c.EndOfTable = true
			return nil
		}

		c.PageIdx = aPage.LeafNode.Header.NextLeaf
		c.CellIdx = 0
		aPage, err = c.Table.readPage(ctx, c.PageIdx)
		if err != nil {
			return fmt.Errorf("cursor advance: %w", err)
		}
	}

	return nil
}
