package simpledb

import (
	"fmt"
)

// IndexOfChild returns the index of the child which should contain the given key.
// For example, if node has 2 keys, this could return 0 for the leftmost child,
// 1 for the middle child or 2 for the rightmost child.
// The returned value is not a page index!
func (n *InternalNode) IndexOfChild(key uint32) uint32 {
	// Binary search
	var (
		minIdx = uint32(0)
		maxIdx = n.Header.KeysNum
	)
	for minIdx != maxIdx {
		idx := (minIdx + maxIdx) / 2
		rightKey := n.ICells[idx].Key
		if rightKey >= key {
			maxIdx = idx
		} else {
			minIdx = idx + 1
		}
	}

	return minIdx
}

// IndexOfKey returns index of cell with key and a boolean flag
// indicating whether key was found in the node or not.
func (n *InternalNode) IndexOfKey(key uint32) (uint32, bool) {
	for idx, aCell := range n.ICells {
		if aCell.Key == key {
			return uint32(idx), true
		}
	}

	return 0, false
}

// IndexOfPage returns index of child which contains page number
func (n *InternalNode) IndexOfPage(pageIdx PageIndex) (uint32, error) {
	for idx, aCell := range n.ICells {
		if aCell.Child == pageIdx {
			return uint32(idx), nil
		}
	}
	if n.Header.RightChild == pageIdx {
		return n.Header.KeysNum, nil
	}
	return 0, fmt.Errorf("page %d not found", pageIdx)
}

// Child returns a page index of nth child of the node marked by its index
// (0 for the leftmost child, index equal to number of keys means the rightmost child).
func (n *InternalNode) Child(childIdx uint32) (PageIndex, error) {
	keysNum := n.Header.KeysNum
	if childIdx > keysNum {
		return 0, fmt.Errorf("childIdx %d out of keysNum %d", childIdx, keysNum)
	}

	if childIdx == keysNum {
		return n.Header.RightChild, nil
	}

	return n.ICells[childIdx].Child, nil
}

// UpdateKey overwrites the separator equal to oldKey, it reports false
// when no separator holds oldKey.
func (n *InternalNode) UpdateKey(oldKey, newKey uint32) bool {
	idx, ok := n.IndexOfKey(oldKey)
	if !ok {
		return false
	}
	n.ICells[idx].Key = newKey
	return true
}

// InsertCell places a cell before the first separator greater than its key.
func (n *InternalNode) InsertCell(aCell ICell) {
	idx := n.Header.KeysNum
	for i, c := range n.ICells {
		if c.Key > aCell.Key {
			idx = uint32(i)
			break
		}
	}
	n.ICells = append(n.ICells, ICell{})
	copy(n.ICells[idx+1:], n.ICells[idx:])
	n.ICells[idx] = aCell
	n.Header.KeysNum += 1
}

func (n *InternalNode) IsFull() bool {
	return n.Header.KeysNum >= InternalNodeMaxCells
}

func (n *InternalNode) Keys() []uint32 {
	keys := make([]uint32, 0, n.Header.KeysNum)
	for idx := range n.Header.KeysNum {
		keys = append(keys, n.ICells[idx].Key)
	}
	return keys
}

// Children returns page indexes of all children including the right child.
func (n *InternalNode) Children() []PageIndex {
	children := make([]PageIndex, 0, n.Header.KeysNum+1)
	for idx := range n.Header.KeysNum {
		children = append(children, n.ICells[idx].Child)
	}
	children = append(children, n.Header.RightChild)
	return children
}
