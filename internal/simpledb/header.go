package simpledb

import (
	"fmt"
)

const (
	PageTypeLeaf byte = iota
	PageTypeInternal
)

// CommonNodeHeaderSize is type (1) + is root (1) + parent pointer (4).
const CommonNodeHeaderSize = 1 + 1 + 4

type Header struct {
	IsInternal bool
	IsRoot     bool
	Parent     PageIndex
}

func (h *Header) Size() uint64 {
	return CommonNodeHeaderSize
}

func (h *Header) Marshal(buf []byte) {
	i := uint64(0)
	if h.IsInternal {
		buf[i] = PageTypeInternal
	} else {
		buf[i] = PageTypeLeaf
	}
	i += 1

	if h.IsRoot {
		buf[i] = 1
	} else {
		buf[i] = 0
	}
	i += 1

	marshalUint32(buf, uint32(h.Parent), i)
}

func (h *Header) Unmarshal(buf []byte) (uint64, error) {
	if buf[0] != PageTypeLeaf && buf[0] != PageTypeInternal {
		return 0, fmt.Errorf("unrecognised page type byte %d", buf[0])
	}
	h.IsInternal = buf[0] == PageTypeInternal
	h.IsRoot = buf[1] == 1
	h.Parent = PageIndex(unmarshalUint32(buf, 2))

	return h.Size(), nil
}

func marshalUint32(buf []byte, n uint32, i uint64) []byte {
	buf[i+0] = byte(n >> 0)
	buf[i+1] = byte(n >> 8)
	buf[i+2] = byte(n >> 16)
	buf[i+3] = byte(n >> 24)
	return buf
}

func unmarshalUint32(buf []byte, i uint64) uint32 {
	return 0 |
		(uint32(buf[i+0]) << 0) |
		(uint32(buf[i+1]) << 8) |
		(uint32(buf[i+2]) << 16) |
		(uint32(buf[i+3]) << 24)
}
