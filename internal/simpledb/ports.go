package simpledb

import (
	"context"
	"io"
)

//go:generate mockery --name=Pager --structname=MockPager --inpackage --case=snake --testonly

type DBFile interface {
	io.ReadSeeker
	io.ReaderAt
	io.WriterAt
	io.Closer
}

// Pager hands out raw page buffers. Buffers returned by GetPage are the
// cached copies, writing into them and calling Flush persists the change.
type Pager interface {
	GetPage(context.Context, PageIndex) ([]byte, error)
	TotalPages() uint32
	Flush(context.Context, PageIndex) error
}
