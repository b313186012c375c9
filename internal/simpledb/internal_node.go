package simpledb

import (
	"fmt"
)

const (
	InternalNodeMaxCells = 3

	// InternalNodeHeaderSize is the common header plus keys (4) and right child (4).
	InternalNodeHeaderSize = CommonNodeHeaderSize + 4 + 4
	// ICellSize is child pointer (4) plus key (4).
	ICellSize = 4 + 4
)

type InternalNodeHeader struct {
	Header
	KeysNum    uint32
	RightChild PageIndex
}

func (h *InternalNodeHeader) Size() uint64 {
	return h.Header.Size() + 8
}

func (h *InternalNodeHeader) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	i := uint64(0)

	h.Header.Marshal(buf[i:])
	i += h.Header.Size()

	marshalUint32(buf, h.KeysNum, i)
	i += 4
	marshalUint32(buf, uint32(h.RightChild), i)

	return buf[:size], nil
}

func (h *InternalNodeHeader) Unmarshal(buf []byte) (uint64, error) {
	i := uint64(0)

	hi, err := h.Header.Unmarshal(buf[i:])
	if err != nil {
		return 0, err
	}
	i += hi

	h.KeysNum = unmarshalUint32(buf, i)
	i += 4
	h.RightChild = PageIndex(unmarshalUint32(buf, i))

	return h.Size(), nil
}

// ICell pairs a child page with the maximum key found in its subtree.
type ICell struct {
	Child PageIndex
	Key   uint32
}

func (c *ICell) Size() uint64 {
	return ICellSize
}

func (c *ICell) Marshal(buf []byte) ([]byte, error) {
	size := c.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	marshalUint32(buf, uint32(c.Child), 0)
	marshalUint32(buf, c.Key, 4)

	return buf[:size], nil
}

func (c *ICell) Unmarshal(buf []byte) (uint64, error) {
	c.Child = PageIndex(unmarshalUint32(buf, 0))
	c.Key = unmarshalUint32(buf, 4)

	return c.Size(), nil
}

type InternalNode struct {
	Header InternalNodeHeader
	ICells []ICell
}

func NewInternalNode(cells ...ICell) *InternalNode {
	aNode := InternalNode{
		Header: InternalNodeHeader{
			Header: Header{
				IsInternal: true,
			},
		},
		ICells: make([]ICell, 0, InternalNodeMaxCells+1),
	}
	if len(cells) > 0 {
		aNode.Header.KeysNum = uint32(len(cells))
		aNode.ICells = append(aNode.ICells, cells...)
	}
	return &aNode
}

func (n *InternalNode) Clone() *InternalNode {
	aCopy := NewInternalNode(n.ICells...)
	aCopy.Header = n.Header
	return aCopy
}

func (n *InternalNode) Size() uint64 {
	return n.Header.Size() + uint64(n.Header.KeysNum)*ICellSize
}

func (n *InternalNode) Marshal(buf []byte) ([]byte, error) {
	if int(n.Header.KeysNum) != len(n.ICells) {
		return nil, fmt.Errorf("internal header has %d keys, node holds %d", n.Header.KeysNum, len(n.ICells))
	}

	size := n.Size()
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

	for idx := range n.ICells {
		icbuf, err := n.ICells[idx].Marshal(buf[i:])
		if err != nil {
			return nil, err
		}
		i += uint64(len(icbuf))
	}

	return buf[:i], nil
}

func (n *InternalNode) Unmarshal(buf []byte) (uint64, error) {
	i := uint64(0)

	hi, err := n.Header.Unmarshal(buf[i:])
	if err != nil {
		return 0, err
	}
	i += hi

	if n.Header.KeysNum > InternalNodeMaxCells {
		return 0, fmt.Errorf("internal node claims %d keys, max is %d", n.Header.KeysNum, InternalNodeMaxCells)
	}

	n.ICells = n.ICells[:0]
	for idx := 0; idx < int(n.Header.KeysNum); idx++ {
		n.ICells = append(n.ICells, ICell{})
		ci, err := n.ICells[idx].Unmarshal(buf[i:])
		if err != nil {
			return 0, err
		}
		i += ci
	}

	return i, nil
}
