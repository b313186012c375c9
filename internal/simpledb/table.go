package simpledb

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Table struct {
	RootPageIdx PageIndex
	pager       Pager
	logger      *zap.Logger
}

// NewTable binds a table to the pager. An empty pager gets a fresh root
// leaf on page 0, otherwise page 0 must already hold the root.
func NewTable(ctx context.Context, logger *zap.Logger, pager Pager) (*Table, error) {
	aTable := &Table{
		RootPageIdx: 0,
		pager:       pager,
		logger:      logger,
	}

	if pager.TotalPages() == 0 {
		aRootPage := &Page{Index: aTable.RootPageIdx, LeafNode: NewLeafNode()}
		aRootPage.LeafNode.Header.IsRoot = true
		if err := aTable.writePage(ctx, aRootPage); err != nil {
			return nil, fmt.Errorf("init root page: %w", err)
		}
		logger.Debug("initialized empty table")
		return aTable, nil
	}

	aRootPage, err := aTable.readPage(ctx, aTable.RootPageIdx)
	if err != nil {
		return nil, fmt.Errorf("load root page: %w", err)
	}
	if !aRootPage.IsRoot() {
		return nil, fmt.Errorf("page %d is not flagged as root", aTable.RootPageIdx)
	}

	return aTable, nil
}

func (t *Table) readPage(ctx context.Context, pageIdx PageIndex) (*Page, error) {
	buf, err := t.pager.GetPage(ctx, pageIdx)
	if err != nil {
		return nil, err
	}
	return unmarshalPage(pageIdx, buf)
}

// writePage encodes the page into its cached buffer and flushes it.
func (t *Table) writePage(ctx context.Context, aPage *Page) error {
	buf, err := t.pager.GetPage(ctx, aPage.Index)
	if err != nil {
		return err
	}
	if _, err := marshalPage(aPage, buf); err != nil {
		return err
	}
	return t.pager.Flush(ctx, aPage.Index)
}

// findLeaf descends from the root to the leaf whose key range covers key.
func (t *Table) findLeaf(ctx context.Context, key uint32) (*Page, error) {
	aPage, err := t.readPage(ctx, t.RootPageIdx)
	if err != nil {
		return nil, err
	}
	for aPage.InternalNode != nil {
		childPageIdx, err := aPage.InternalNode.Child(aPage.InternalNode.IndexOfChild(key))
		if err != nil {
			return nil, err
		}
		aPage, err = t.readPage(ctx, childPageIdx)
		if err != nil {
			return nil, err
		}
	}
	return aPage, nil
}

// Find returns a cursor at the first cell of the leaf that holds key or
// would hold it after insertion.
func (t *Table) Find(ctx context.Context, key uint32) (*Cursor, error) {
	aPage, err := t.findLeaf(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return &Cursor{
		Table:      t,
		PageIdx:    aPage.Index,
		CellIdx:    0,
		EndOfTable: aPage.LeafNode.Header.Cells == 0,
	}, nil
}

// Seek the cursor for a key, if it does not exist then return the cursor
// for the page and cell where it should be inserted
func (t *Table) Seek(ctx context.Context, key uint32) (*Cursor, error) {
	aPage, err := t.findLeaf(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	cellIdx, _ := aPage.LeafNode.IndexOfKey(key)
	return &Cursor{
		Table:      t,
		PageIdx:    aPage.Index,
		CellIdx:    cellIdx,
		EndOfTable: cellIdx >= aPage.LeafNode.Header.Cells && aPage.LeafNode.Header.NextLeaf == NoNextLeaf,
	}, nil
}

func (t *Table) SeekFirst(ctx context.Context) (*Cursor, error) {
	pageIdx, err := t.leftmostLeaf(ctx)
	if err != nil {
		return nil, fmt.Errorf("seek first: %w", err)
	}
	aPage, err := t.readPage(ctx, pageIdx)
	if err != nil {
		return nil, fmt.Errorf("seek first: %w", err)
	}
	return &Cursor{
		Table:      t,
		PageIdx:    pageIdx,
		CellIdx:    0,
		EndOfTable: aPage.LeafNode.Header.Cells == 0,
	}, nil
}

func (t *Table) leftmostLeaf(ctx context.Context) (PageIndex, error) {
	pageIdx := t.RootPageIdx
	aPage, err := t.readPage(ctx, pageIdx)
	if err != nil {
		return 0, err
	}
	for aPage.LeafNode == nil {
		pageIdx, err = aPage.InternalNode.Child(0)
		if err != nil {
			return 0, err
		}
		aPage, err = t.readPage(ctx, pageIdx)
		if err != nil {
			return 0, err
		}
	}
	return pageIdx, nil
}

// MaxKey returns the largest key in the subtree rooted at the page.
func (t *Table) MaxKey(ctx context.Context, aPage *Page) (uint32, error) {
	for aPage.LeafNode == nil {
		var err error
		aPage, err = t.readPage(ctx, aPage.InternalNode.Header.RightChild)
		if err != nil {
			return 0, fmt.Errorf("max key: %w", err)
		}
	}
	if aPage.LeafNode.Header.Cells == 0 {
		return 0, fmt.Errorf("max key: leaf node %d has no cells", aPage.Index)
	}
	return aPage.LeafNode.LastCell().Key, nil
}

type pageVisitor func(aPage *Page, depth int) error

// Walk visits every page depth first, parents before children and
// children left to right.
func (t *Table) Walk(ctx context.Context, fn pageVisitor) error {
	return t.walk(ctx, t.RootPageIdx, 0, fn)
}

func (t *Table) walk(ctx context.Context, pageIdx PageIndex, depth int, fn pageVisitor) error {
	aPage, err := t.readPage(ctx, pageIdx)
	if err != nil {
		return err
	}
	if err := fn(aPage, depth); err != nil {
		return err
	}
	if aPage.LeafNode != nil {
		return nil
	}
	for _, childIdx := range aPage.InternalNode.Children() {
		if err := t.walk(ctx, childIdx, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
