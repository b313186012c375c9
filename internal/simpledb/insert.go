package simpledb

import (
	"context"
	"errors"
	"fmt"
)

var ErrDuplicateKey = errors.New("duplicate key")

// Insert stores the row under key. A key that already exists is rejected
// with ErrDuplicateKey and leaves the tree untouched.
func (t *Table) Insert(ctx context.Context, key uint32, aRow Row) error {
	if err := aRow.Validate(); err != nil {
		return err
	}

	aCursor, err := t.Find(ctx, key)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	aPage, err := t.readPage(ctx, aCursor.PageIdx)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if aPage.LeafNode == nil {
		return fmt.Errorf("error inserting row to a non leaf node, key %d", key)
	}
	if aPage.LeafNode.HasKey(key) {
		return fmt.Errorf("%w: %d", ErrDuplicateKey, key)
	}

	aCell := Cell{Key: key, Value: aRow}

	if !aPage.LeafNode.IsFull() {
		aPage.LeafNode.InsertCell(aCell)
		if err := t.writePage(ctx, aPage); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	}

	if err := t.reservePages(ctx, aPage); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if err := t.leafNodeSplitInsert(ctx, aPage, aCell); err != nil {
		return fmt.Errorf("leaf node split insert: %w", err)
	}
	return nil
}

// reservePages makes sure the split cascade starting at a full leaf can
// allocate every page it needs, so running out of pages never leaves a
// half split tree behind.
func (t *Table) reservePages(ctx context.Context, aLeafPage *Page) error {
	var (
		needed = uint32(1) // new sibling leaf
		aPage  = aLeafPage
	)
	for {
		if aPage.IsRoot() {
			needed += 1 // old root content moves to a new left child
			break
		}
		aParentPage, err := t.readPage(ctx, aPage.parent())
		if err != nil {
			return err
		}
		if !aParentPage.InternalNode.IsFull() {
			break
		}
		needed += 1 // new sibling internal node
		aPage = aParentPage
	}

	if total := t.pager.TotalPages(); total+needed > MaxPages {
		return fmt.Errorf("%w: split needs %d new pages, %d of %d used", ErrPageOutOfBounds, needed, total, MaxPages)
	}
	return nil
}

// Create a new node and move half the cells over.
// Insert the new value in one of the two nodes.
// Update parent or create a new parent.
func (t *Table) leafNodeSplitInsert(ctx context.Context, aSplitPage *Page, aCell Cell) error {
	var (
		oldNode        = aSplitPage.LeafNode
		originalMaxKey = oldNode.LastCell().Key
		newPageIdx     = PageIndex(t.pager.TotalPages())
		aNewPage       = &Page{Index: newPageIdx, LeafNode: NewLeafNode()}
		newNode        = aNewPage.LeafNode
	)

	t.logger.Sugar().With(
		"key", int(aCell.Key),
		"page_index", int(aSplitPage.Index),
		"old_max_key", int(originalMaxKey),
		"new_page_index", int(newPageIdx),
	).Debug("leaf node split insert")

	newNode.Header.Parent = oldNode.Header.Parent
	newNode.Header.NextLeaf = oldNode.Header.NextLeaf
	oldNode.Header.NextLeaf = newPageIdx

	// Upper half moves to the new leaf, the lower half stays
	newNode.Cells = append(newNode.Cells, oldNode.Cells[leafNodeSplitCellIndex:]...)
	newNode.Header.Cells = uint32(len(newNode.Cells))
	oldNode.Cells = oldNode.Cells[:leafNodeSplitCellIndex]
	oldNode.Header.Cells = leafNodeSplitCellIndex

	if aCell.Key < newNode.FirstCell().Key {
		oldNode.InsertCell(aCell)
	} else {
		newNode.InsertCell(aCell)
	}

	if err := t.writePage(ctx, aNewPage); err != nil {
		return err
	}
	if err := t.writePage(ctx, aSplitPage); err != nil {
		return err
	}

	if oldNode.Header.IsRoot {
		return t.createNewRoot(ctx, aSplitPage, newPageIdx)
	}

	parentPageIdx := oldNode.Header.Parent
	if err := t.internalNodeUpdateKey(ctx, parentPageIdx, originalMaxKey, oldNode.LastCell().Key); err != nil {
		return err
	}

	return t.internalNodeInsert(ctx, parentPageIdx, newPageIdx)
}

// Handle splitting the root.
// Old root copied to new page, becomes left child.
// Address of right child passed in.
// Re-initialize root page to contain the new root node.
// New root node points to two children.
func (t *Table) createNewRoot(ctx context.Context, aOldRootPage *Page, rightChildPageIdx PageIndex) error {
	leftChildPageIdx := PageIndex(t.pager.TotalPages())

	t.logger.Sugar().With(
		"root_page_index", int(t.RootPageIdx),
		"left_child_index", int(leftChildPageIdx),
		"right_child_index", int(rightChildPageIdx),
	).Debug("create new root")

	// Copy all node contents to left child
	aLeftChildPage := &Page{Index: leftChildPageIdx}
	if aOldRootPage.LeafNode != nil {
		aLeftChildPage.LeafNode = aOldRootPage.LeafNode.Clone()
	} else {
		aLeftChildPage.InternalNode = aOldRootPage.InternalNode.Clone()
	}
	aLeftChildPage.setRoot(false)
	aLeftChildPage.setParent(t.RootPageIdx)
	if err := t.writePage(ctx, aLeftChildPage); err != nil {
		return err
	}

	// Children of a copied internal node now live under the left child
	if aLeftChildPage.InternalNode != nil {
		if err := t.setParent(ctx, leftChildPageIdx, aLeftChildPage.InternalNode.Children()...); err != nil {
			return err
		}
	}

	if err := t.setParent(ctx, t.RootPageIdx, rightChildPageIdx); err != nil {
		return err
	}

	leftChildMaxKey, err := t.MaxKey(ctx, aLeftChildPage)
	if err != nil {
		return err
	}

	// Change root node to a new internal node
	aNewRootPage := &Page{
		Index:        t.RootPageIdx,
		InternalNode: NewInternalNode(ICell{Child: leftChildPageIdx, Key: leftChildMaxKey}),
	}
	aNewRootPage.InternalNode.Header.IsRoot = true
	aNewRootPage.InternalNode.Header.RightChild = rightChildPageIdx

	return t.writePage(ctx, aNewRootPage)
}

// internalNodeUpdateKey replaces the separator describing a child whose
// maximum key changed. Nothing changes when the child is the right child.
func (t *Table) internalNodeUpdateKey(ctx context.Context, pageIdx PageIndex, oldKey, newKey uint32) error {
	aPage, err := t.readPage(ctx, pageIdx)
	if err != nil {
		return err
	}
	if !aPage.InternalNode.UpdateKey(oldKey, newKey) {
		return nil
	}
	return t.writePage(ctx, aPage)
}

// Add a new child/key pair to parent that corresponds to child
func (t *Table) internalNodeInsert(ctx context.Context, parentPageIdx, childPageIdx PageIndex) error {
	aParentPage, err := t.readPage(ctx, parentPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	if aParentPage.InternalNode.IsFull() {
		return t.internalNodeSplitInsert(ctx, aParentPage, childPageIdx)
	}

	aChildPage, err := t.readPage(ctx, childPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	childMaxKey, err := t.MaxKey(ctx, aChildPage)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	if aChildPage.parent() != parentPageIdx {
		aChildPage.setParent(parentPageIdx)
		if err := t.writePage(ctx, aChildPage); err != nil {
			return fmt.Errorf("internal node insert: %w", err)
		}
	}

	var (
		aParent           = aParentPage.InternalNode
		rightChildPageIdx = aParent.Header.RightChild
	)
	rightChildPage, err := t.readPage(ctx, rightChildPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	rightChildMaxKey, err := t.MaxKey(ctx, rightChildPage)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	if childMaxKey > rightChildMaxKey {
		// Replace right child
		aParent.InsertCell(ICell{Child: rightChildPageIdx, Key: rightChildMaxKey})
		aParent.Header.RightChild = childPageIdx
	} else {
		aParent.InsertCell(ICell{Child: childPageIdx, Key: childMaxKey})
	}

	return t.writePage(ctx, aParentPage)
}

// Splits a full internal node while adding one more child to it. All
// children plus the new one are ordered by their maximum key, the lower
// half stays in the node and the upper half moves to a new sibling. The
// parent separator is updated and the sibling is inserted into the parent,
// which may split the parent as well. Splitting the root creates a new root.
func (t *Table) internalNodeSplitInsert(ctx context.Context, aSplitPage *Page, childPageIdx PageIndex) error {
	aSplitNode := aSplitPage.InternalNode

	children, err := t.childrenWithMaxKeys(ctx, aSplitNode)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	aChildPage, err := t.readPage(ctx, childPageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	childMaxKey, err := t.MaxKey(ctx, aChildPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	children = insertICell(children, ICell{Child: childPageIdx, Key: childMaxKey})
	// The subtree maximum is what the grandparent separator holds, the
	// right child alone may already have shrunk from a split below.
	oldMaxKey := children[len(children)-1].Key

	var (
		leftCount  = (len(children) + 1) / 2
		left       = children[:leftCount]
		right      = children[leftCount:]
		newPageIdx = PageIndex(t.pager.TotalPages())
		aNewPage   = &Page{
			Index:        newPageIdx,
			InternalNode: NewInternalNode(right[:len(right)-1]...),
		}
	)

	t.logger.Sugar().With(
		"page_index", int(aSplitPage.Index),
		"new_page_index", int(newPageIdx),
		"child_page_index", int(childPageIdx),
	).Debug("internal node split insert")

	aNewPage.InternalNode.Header.Parent = aSplitNode.Header.Parent
	aNewPage.InternalNode.Header.RightChild = right[len(right)-1].Child

	aSplitNode.ICells = append(aSplitNode.ICells[:0], left[:len(left)-1]...)
	aSplitNode.Header.KeysNum = uint32(len(left) - 1)
	aSplitNode.Header.RightChild = left[len(left)-1].Child
	leftMaxKey := left[len(left)-1].Key

	if err := t.writePage(ctx, aNewPage); err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	if err := t.writePage(ctx, aSplitPage); err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	if err := t.setParent(ctx, aSplitPage.Index, aSplitNode.Children()...); err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	if err := t.setParent(ctx, newPageIdx, aNewPage.InternalNode.Children()...); err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	if aSplitNode.Header.IsRoot {
		return t.createNewRoot(ctx, aSplitPage, newPageIdx)
	}

	parentPageIdx := aSplitNode.Header.Parent
	if err := t.internalNodeUpdateKey(ctx, parentPageIdx, oldMaxKey, leftMaxKey); err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	return t.internalNodeInsert(ctx, parentPageIdx, newPageIdx)
}

// childrenWithMaxKeys lists every child of the node, the right child
// included, each paired with the maximum key of its subtree.
func (t *Table) childrenWithMaxKeys(ctx context.Context, aNode *InternalNode) ([]ICell, error) {
	children := make([]ICell, 0, aNode.Header.KeysNum+2)
	children = append(children, aNode.ICells...)

	aRightChildPage, err := t.readPage(ctx, aNode.Header.RightChild)
	if err != nil {
		return nil, err
	}
	rightMaxKey, err := t.MaxKey(ctx, aRightChildPage)
	if err != nil {
		return nil, err
	}

	return append(children, ICell{Child: aNode.Header.RightChild, Key: rightMaxKey}), nil
}

func insertICell(cells []ICell, aCell ICell) []ICell {
	idx := len(cells)
	for i, c := range cells {
		if c.Key > aCell.Key {
			idx = i
			break
		}
	}
	cells = append(cells, ICell{})
	copy(cells[idx+1:], cells[idx:])
	cells[idx] = aCell
	return cells
}

func (t *Table) setParent(ctx context.Context, parentPageIdx PageIndex, pageIndexes ...PageIndex) error {
	for _, pageIdx := range pageIndexes {
		aPage, err := t.readPage(ctx, pageIdx)
		if err != nil {
			return err
		}
		if aPage.parent() == parentPageIdx {
			continue
		}
		aPage.setParent(parentPageIdx)
		if err := t.writePage(ctx, aPage); err != nil {
			return err
		}
	}
	return nil
}
