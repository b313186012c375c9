package simpledb

import (
	"fmt"
	"sort"
)

const (
	LeafNodeMaxCells = 13

	// LeafNodeHeaderSize is the common header plus cells (4) and next leaf (4).
	LeafNodeHeaderSize = CommonNodeHeaderSize + 4 + 4
	// LeafNodeCellSize is key (4) plus the fixed-width row.
	LeafNodeCellSize       = 4 + RowSize
	LeafNodeSpaceForCells  = PageSize - LeafNodeHeaderSize
	leafNodeSplitCellIndex = LeafNodeMaxCells / 2
)

type LeafNodeHeader struct {
	Header
	Cells    uint32
	NextLeaf PageIndex
}

func (h *LeafNodeHeader) Size() uint64 {
	return h.Header.Size() + 8
}

func (h *LeafNodeHeader) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	i := uint64(0)

	h.Header.Marshal(buf[i:])
	i += h.Header.Size()

	marshalUint32(buf, h.Cells, i)
	i += 4
	marshalUint32(buf, uint32(h.NextLeaf), i)

	return buf[:size], nil
}

func (h *LeafNodeHeader) Unmarshal(buf []byte) (uint64, error) {
	i := uint64(0)

	hi, err := h.Header.Unmarshal(buf[i:])
	if err != nil {
		return 0, err
	}
	i += hi

	h.Cells = unmarshalUint32(buf, i)
	i += 4
	h.NextLeaf = PageIndex(unmarshalUint32(buf, i))

	return h.Size(), nil
}

type Cell struct {
	Key   uint32
	Value Row
}

func (c *Cell) Size() uint64 {
	return LeafNodeCellSize
}

func (c *Cell) Marshal(buf []byte) ([]byte, error) {
	size := c.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	marshalUint32(buf, c.Key, 0)
	if _, err := c.Value.Marshal(buf[4:]); err != nil {
		return nil, fmt.Errorf("marshal cell %d: %w", c.Key, err)
	}

	return buf, nil
}

func (c *Cell) Unmarshal(buf []byte) (uint64, error) {
	c.Key = unmarshalUint32(buf, 0)
	n, err := c.Value.Unmarshal(buf[4:])
	if err != nil {
		return 0, fmt.Errorf("unmarshal cell %d: %w", c.Key, err)
	}
	return 4 + n, nil
}

type LeafNode struct {
	Header LeafNodeHeader
	Cells  []Cell
}

// NewLeafNode returns a non-root leaf without a successor.
func NewLeafNode(cells ...Cell) *LeafNode {
	aNode := LeafNode{
		Header: LeafNodeHeader{
			NextLeaf: NoNextLeaf,
		},
		Cells: make([]Cell, 0, LeafNodeMaxCells+1),
	}
	if len(cells) > 0 {
		aNode.Header.Cells = uint32(len(cells))
		aNode.Cells = append(aNode.Cells, cells...)
	}
	return &aNode
}

func (n *LeafNode) Clone() *LeafNode {
	aCopy := NewLeafNode(n.Cells...)
	aCopy.Header = n.Header
	return aCopy
}

func (n *LeafNode) Size() uint64 {
	return n.Header.Size() + uint64(n.Header.Cells)*LeafNodeCellSize
}

// Marshal writes the header followed by cells in ascending key order.
func (n *LeafNode) Marshal(buf []byte) ([]byte, error) {
	if int(n.Header.Cells) != len(n.Cells) {
		return nil, fmt.Errorf("leaf header has %d cells, node holds %d", n.Header.Cells, len(n.Cells))
	}

	size := n.Size()
	if size > PageSize {
		return nil, fmt.Errorf("leaf node of %d bytes does not fit into a page", size)
	}
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	i := uint64(0)

	hbuf, err := n.Header.Marshal(buf[i:])
	if err != nil {
		return nil, err
	}
	i += uint64(len(hbuf))

	n.sortCells()
	for idx := range n.Cells {
		cbuf, err := n.Cells[idx].Marshal(buf[i:])
		if err != nil {
			return nil, err
		}
		i += uint64(len(cbuf))
	}

	return buf[:i], nil
}

func (n *LeafNode) Unmarshal(buf []byte) (uint64, error) {
	i := uint64(0)

	hi, err := n.Header.Unmarshal(buf[i:])
	if err != nil {
		return 0, err
	}
	i += hi

	if n.Header.Cells > LeafNodeMaxCells {
		return 0, fmt.Errorf("leaf node claims %d cells, max is %d", n.Header.Cells, LeafNodeMaxCells)
	}

	n.Cells = n.Cells[:0]
	for idx := 0; idx < int(n.Header.Cells); idx++ {
		n.Cells = append(n.Cells, Cell{})
		ci, err := n.Cells[idx].Unmarshal(buf[i:])
		if err != nil {
			return 0, err
		}
		i += ci
	}

	return i, nil
}

func (n *LeafNode) sortCells() {
	sort.Slice(n.Cells, func(i, j int) bool {
		return n.Cells[i].Key < n.Cells[j].Key
	})
}

// IndexOfKey returns the position of key, or the position it would be
// inserted at, plus whether the key is present.
func (n *LeafNode) IndexOfKey(key uint32) (uint32, bool) {
	var (
		minIdx uint32
		maxIdx = n.Header.Cells
	)
	for minIdx != maxIdx {
		idx := (minIdx + maxIdx) / 2
		cellKey := n.Cells[idx].Key
		if key == cellKey {
			return idx, true
		}
		if key < cellKey {
			maxIdx = idx
		} else {
			minIdx = idx + 1
		}
	}
	return minIdx, false
}

func (n *LeafNode) HasKey(key uint32) bool {
	_, ok := n.IndexOfKey(key)
	return ok
}

// InsertCell puts a cell at its key-ordered position.
func (n *LeafNode) InsertCell(aCell Cell) {
	idx, _ := n.IndexOfKey(aCell.Key)
	n.Cells = append(n.Cells, Cell{})
	copy(n.Cells[idx+1:], n.Cells[idx:])
	n.Cells[idx] = aCell
	n.Header.Cells += 1
}

func (n *LeafNode) IsFull() bool {
	return n.Header.Cells >= LeafNodeMaxCells
}

func (n *LeafNode) FirstCell() Cell {
	return n.Cells[0]
}

func (n *LeafNode) LastCell() Cell {
	return n.Cells[n.Header.Cells-1]
}

func (n *LeafNode) Keys() []uint32 {
	keys := make([]uint32, 0, n.Header.Cells)
	for idx := range n.Header.Cells {
		keys = append(keys, n.Cells[idx].Key)
	}
	return keys
}
