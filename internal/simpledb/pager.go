package simpledb

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

var (
	ErrPageOutOfBounds  = errors.New("page out of bounds")
	ErrInvalidPageFlush = errors.New("invalid page flush")
)

type pagerImpl struct {
	totalPages uint32 // total number of pages, including pages not yet flushed
	diskPages  uint32 // number of pages present in the file

	// pages is indexed by page index, nil entries were never fetched
	pages [][]byte

	file   DBFile
	logger *zap.Logger
}

// NewPager opens the database file and computes the number of pages it holds.
func NewPager(file DBFile, logger *zap.Logger) (*pagerImpl, error) {
	aPager := &pagerImpl{
		file:   file,
		pages:  make([][]byte, MaxPages),
		logger: logger,
	}

	fileSize, err := aPager.file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	// Basic check to verify file size is a multiple of page size (4096B)
	if fileSize%PageSize != 0 {
		return nil, fmt.Errorf("db file size is not divisible by page size: %d", fileSize)
	}

	totalPages := fileSize / PageSize
	if totalPages > MaxPages {
		return nil, fmt.Errorf("%w: file holds %d pages, max %d", ErrPageOutOfBounds, totalPages, MaxPages)
	}
	aPager.totalPages = uint32(totalPages)
	aPager.diskPages = uint32(totalPages)

	return aPager, nil
}

func (p *pagerImpl) TotalPages() uint32 {
	return p.totalPages
}

// GetPage returns the cached buffer for the page, loading it from the file
// on first access. Requesting a page past the end grows the page count.
func (p *pagerImpl) GetPage(ctx context.Context, pageIdx PageIndex) ([]byte, error) {
	if pageIdx >= MaxPages {
		return nil, fmt.Errorf("%w: page index %d reached limit of max pages %d", ErrPageOutOfBounds, pageIdx, MaxPages)
	}

	if buf := p.pages[pageIdx]; buf != nil {
		return buf, nil
	}

	buf := make([]byte, PageSize)
	if uint32(pageIdx) < p.diskPages {
		_, err := p.file.ReadAt(buf, int64(pageIdx)*PageSize)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read page %d: %w", pageIdx, err)
		}
		p.logger.Sugar().With("page_index", int(pageIdx)).Debug("loaded page from file")
	}
	p.pages[pageIdx] = buf

	if uint32(pageIdx) >= p.totalPages {
		p.logger.Sugar().With(
			"page_index", int(pageIdx),
			"total_pages", int(pageIdx)+1,
		).Debug("extended page count")
		p.totalPages = uint32(pageIdx) + 1
	}

	return buf, nil
}

// Flush writes the cached page back to its offset in the file.
func (p *pagerImpl) Flush(ctx context.Context, pageIdx PageIndex) error {
	if pageIdx >= MaxPages || p.pages[pageIdx] == nil {
		return fmt.Errorf("%w: page %d was never fetched", ErrInvalidPageFlush, pageIdx)
	}

	if _, err := p.file.WriteAt(p.pages[pageIdx], int64(pageIdx)*PageSize); err != nil {
		return fmt.Errorf("error flushing page %d: %w", pageIdx, err)
	}
	if uint32(pageIdx) >= p.diskPages {
		p.diskPages = uint32(pageIdx) + 1
	}

	return nil
}

// FlushAll writes every cached page in ascending page order.
func (p *pagerImpl) FlushAll(ctx context.Context) error {
	for pageIdx := range p.totalPages {
		if p.pages[pageIdx] == nil {
			continue
		}
		if err := p.Flush(ctx, PageIndex(pageIdx)); err != nil {
			return err
		}
	}
	return nil
}

func (p *pagerImpl) Close() error {
	if err := p.FlushAll(context.Background()); err != nil {
		return err
	}
	return p.file.Close()
}
