package simpledb

import (
	"fmt"
	"math"
)

const (
	PageSize = 4096 // 4 kilobytes
	MaxPages = 400

	// NoNextLeaf marks the last leaf in the leaf chain. Page 0 is a real
	// page index so it cannot double as the sentinel.
	NoNextLeaf PageIndex = math.MaxUint32
)

type PageIndex uint32

// Page is the decoded form of a single page, exactly one of LeafNode
// and InternalNode is set.
type Page struct {
	Index        PageIndex
	InternalNode *InternalNode
	LeafNode     *LeafNode
}

func (p *Page) IsLeaf() bool {
	return p.LeafNode != nil
}

func (p *Page) IsRoot() bool {
	if p.LeafNode != nil {
		return p.LeafNode.Header.IsRoot
	}
	return p.InternalNode.Header.IsRoot
}

func (p *Page) setParent(parentIdx PageIndex) {
	if p.LeafNode != nil {
		p.LeafNode.Header.Parent = parentIdx
	} else if p.InternalNode != nil {
		p.InternalNode.Header.Parent = parentIdx
	}
}

func (p *Page) setRoot(isRoot bool) {
	if p.LeafNode != nil {
		p.LeafNode.Header.IsRoot = isRoot
	} else if p.InternalNode != nil {
		p.InternalNode.Header.IsRoot = isRoot
	}
}

func (p *Page) parent() PageIndex {
	if p.LeafNode != nil {
		return p.LeafNode.Header.Parent
	}
	return p.InternalNode.Header.Parent
}

// marshalPage encodes the node held by the page into buf which must be
// at least PageSize long. Bytes past the encoded node are zeroed.
func marshalPage(aPage *Page, buf []byte) ([]byte, error) {
	if len(buf) < PageSize {
		return nil, fmt.Errorf("page buffer too small: %d", len(buf))
	}
	clear(buf[:PageSize])

	if aPage.LeafNode != nil {
		data, err := aPage.LeafNode.Marshal(buf)
		if err != nil {
			return nil, fmt.Errorf("error marshaling leaf node: %w", err)
		}
		return data, nil
	} else if aPage.InternalNode != nil {
		data, err := aPage.InternalNode.Marshal(buf)
		if err != nil {
			return nil, fmt.Errorf("error marshaling internal node: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("page %d is neither internal nor leaf node", aPage.Index)
}

// unmarshalPage decodes a page buffer. A zero filled buffer decodes as an
// empty non-root leaf.
func unmarshalPage(pageIdx PageIndex, buf []byte) (*Page, error) {
	switch buf[0] {
	case PageTypeLeaf:
		leaf := NewLeafNode()
		if _, err := leaf.Unmarshal(buf); err != nil {
			return nil, fmt.Errorf("error unmarshaling leaf node %d: %w", pageIdx, err)
		}
		return &Page{Index: pageIdx, LeafNode: leaf}, nil
	case PageTypeInternal:
		internal := NewInternalNode()
		if _, err := internal.Unmarshal(buf); err != nil {
			return nil, fmt.Errorf("error unmarshaling internal node %d: %w", pageIdx, err)
		}
		return &Page{Index: pageIdx, InternalNode: internal}, nil
	default:
		return nil, fmt.Errorf("unrecognised page type byte %d on page %d", buf[0], pageIdx)
	}
}
