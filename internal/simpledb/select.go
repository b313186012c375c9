package simpledb

import (
	"context"
	"fmt"
)

// Select returns every row in ascending key order. Rows are read lazily,
// one leaf at a time, by walking the leaf chain from the leftmost leaf.
func (t *Table) Select(ctx context.Context) (*Iterator, error) {
	pageIdx, err := t.leftmostLeaf(ctx)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	var (
		aLeaf   *LeafNode
		cellIdx uint32
	)
	return NewIterator(func(ctx context.Context) (Row, error) {
		for {
			if aLeaf == nil {
				if pageIdx == NoNextLeaf {
					return Row{}, ErrNoMoreRows
				}
				aPage, err := t.readPage(ctx, pageIdx)
				if err != nil {
					return Row{}, fmt.Errorf("select: %w", err)
				}
				if aPage.LeafNode == nil {
					return Row{}, fmt.Errorf("select: page %d in leaf chain is not a leaf", pageIdx)
				}
				aLeaf, cellIdx = aPage.LeafNode, 0
			}

			if cellIdx < aLeaf.Header.Cells {
				aRow := aLeaf.Cells[cellIdx].Value
				cellIdx += 1
				return aRow, nil
			}

			pageIdx, aLeaf = aLeaf.Header.NextLeaf, nil
		}
	}), nil
}
