package simpledb

import (
	"cmp"
	"context"
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTable_Insert_RootLeaf(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aTable, _, _ := newTestTable(ctx, t)
	rows := gen.Rows(LeafNodeMaxCells)

	insertRows(ctx, t, aTable, rows)

	aRootPage, err := aTable.readPage(ctx, aTable.RootPageIdx)
	require.NoError(t, err)
	require.NotNil(t, aRootPage.LeafNode)
	assert.True(t, aRootPage.IsRoot())
	assert.Equal(t, uint32(LeafNodeMaxCells), aRootPage.LeafNode.Header.Cells)

	keys := rowKeys(rows)
	slices.Sort(keys)
	assert.Equal(t, keys, aRootPage.LeafNode.Keys())
}

func TestTable_Insert_SplitRootLeaf(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aTable, aPager, _ := newTestTable(ctx, t)
	rows := gen.SequentialRows(LeafNodeMaxCells + 1)

	insertRows(ctx, t, aTable, rows)

	assert.Equal(t, 3, int(aPager.TotalPages()))

	// Root stays on page 0 and becomes an internal node with one separator
	aRootPage, err := aTable.readPage(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, aRootPage.InternalNode)
	assert.True(t, aRootPage.IsRoot())
	assert.Equal(t, []ICell{{Child: 2, Key: 6}}, aRootPage.InternalNode.ICells)
	assert.Equal(t, PageIndex(1), aRootPage.InternalNode.Header.RightChild)

	// Lower half was moved to page 2
	aLeftPage, err := aTable.readPage(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, aLeftPage.LeafNode)
	assert.False(t, aLeftPage.IsRoot())
	assert.Equal(t, PageIndex(0), aLeftPage.LeafNode.Header.Parent)
	assert.Equal(t, PageIndex(1), aLeftPage.LeafNode.Header.NextLeaf)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6}, aLeftPage.LeafNode.Keys())

	// Upper half plus the new key on page 1
	aRightPage, err := aTable.readPage(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, aRightPage.LeafNode)
	assert.False(t, aRightPage.IsRoot())
	assert.Equal(t, PageIndex(0), aRightPage.LeafNode.Header.Parent)
	assert.Equal(t, NoNextLeaf, aRightPage.LeafNode.Header.NextLeaf)
	assert.Equal(t, []uint32{7, 8, 9, 10, 11, 12, 13, 14}, aRightPage.LeafNode.Keys())

	assert.Equal(t, rows, selectRows(ctx, t, aTable))
	checkTree(ctx, t, aTable)
}

func TestTable_Insert_SplitRootLeaf_KeyGoesLeft(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aTable, _, _ := newTestTable(ctx, t)

	for key := uint32(10); key < 10+LeafNodeMaxCells; key++ {
		require.NoError(t, aTable.Insert(ctx, key, Row{ID: key}))
	}
	require.NoError(t, aTable.Insert(ctx, 1, Row{ID: 1}))

	aLeftPage, err := aTable.readPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 10, 11, 12, 13, 14, 15}, aLeftPage.LeafNode.Keys())

	aRightPage, err := aTable.readPage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{16, 17, 18, 19, 20, 21, 22}, aRightPage.LeafNode.Keys())

	aRootPage, err := aTable.readPage(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{15}, aRootPage.InternalNode.Keys())

	checkTree(ctx, t, aTable)
}

func TestTable_Insert_DuplicateKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name string
		Rows []Row
	}{
		{
			Name: "Root leaf",
			Rows: gen.Rows(5),
		},
		{
			Name: "Full leaf",
			Rows: gen.SequentialRows(LeafNodeMaxCells),
		},
		{
			Name: "Multi level tree",
			Rows: gen.Rows(200),
		},
	}

	for _, aTestCase := range testCases {
		t.Run(aTestCase.Name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			aTable, aPager, dbFile := newTestTable(ctx, t)

			insertRows(ctx, t, aTable, aTestCase.Rows)
			totalPages := aPager.TotalPages()

			before, err := os.ReadFile(dbFile.Name())
			require.NoError(t, err)

			aDuplicate := aTestCase.Rows[len(aTestCase.Rows)/2]
			aDuplicate.Username = "someone_else"
			err = aTable.Insert(ctx, aDuplicate.ID, aDuplicate)
			require.ErrorIs(t, err, ErrDuplicateKey)

			after, err := os.ReadFile(dbFile.Name())
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.Equal(t, totalPages, aPager.TotalPages())

			rows := selectRows(ctx, t, aTable)
			assert.Len(t, rows, len(aTestCase.Rows))
		})
	}
}

func TestTable_Insert_FieldTooLong(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aTable, _, _ := newTestTable(ctx, t)

	aRow := Row{ID: 1, Username: string(make([]byte, UsernameSize+1))}
	err := aTable.Insert(ctx, aRow.ID, aRow)
	require.ErrorIs(t, err, ErrFieldTooLong)

	assert.Empty(t, selectRows(ctx, t, aTable))
}

func TestTable_Insert_CascadingSplit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		Name string
		Rows []Row
	}{
		{
			Name: "Ascending keys",
			Rows: gen.SequentialRows(500),
		},
		{
			Name: "Descending keys",
			Rows: func() []Row {
				rows := gen.SequentialRows(500)
				slices.Reverse(rows)
				return rows
			}(),
		},
		{
			Name: "Random keys",
			Rows: gen.Rows(800),
		},
	}

	for _, aTestCase := range testCases {
		t.Run(aTestCase.Name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			aTable, _, _ := newTestTable(ctx, t)

			insertRows(ctx, t, aTable, aTestCase.Rows)

			// Internal nodes split, so the tree is at least three levels deep
			maxDepth := 0
			err := aTable.Walk(ctx, func(aPage *Page, depth int) error {
				maxDepth = max(maxDepth, depth)
				return nil
			})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, maxDepth, 2)

			checkTree(ctx, t, aTable)

			expected := slices.Clone(aTestCase.Rows)
			slices.SortFunc(expected, func(a, b Row) int {
				return cmp.Compare(a.ID, b.ID)
			})
			assert.Equal(t, expected, selectRows(ctx, t, aTable))
		})
	}
}

func TestTable_Insert_PageOutOfBounds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aTable, aPager, _ := newTestTable(ctx, t)
	var inserted []Row
	var lastErr error

	for key := uint32(1); key <= 10*MaxPages*LeafNodeMaxCells; key++ {
		aRow := Row{ID: key, Username: "user"}
		if err := aTable.Insert(ctx, key, aRow); err != nil {
			lastErr = err
			break
		}
		inserted = append(inserted, aRow)
	}

	require.ErrorIs(t, lastErr, ErrPageOutOfBounds)
	assert.LessOrEqual(t, int(aPager.TotalPages()), MaxPages)

	// A rejected split leaves the tree as it was
	checkTree(ctx, t, aTable)
	assert.Equal(t, inserted, selectRows(ctx, t, aTable))

	// Keys that fit into a leaf with room still go in
	aCursor, err := aTable.Find(ctx, 1)
	require.NoError(t, err)
	aPage, err := aTable.readPage(ctx, aCursor.PageIdx)
	require.NoError(t, err)
	require.False(t, aPage.LeafNode.IsFull())
	require.NoError(t, aTable.Insert(ctx, 0, Row{ID: 0}))
}

func TestTable_Insert_FlushError(t *testing.T) {
	t.Parallel()

	var (
		ctx       = context.Background()
		pagerMock = NewMockPager(t)
		aRootPage = &Page{Index: 0, LeafNode: NewLeafNode()}
		buf       = make([]byte, PageSize)
	)

	aRootPage.LeafNode.Header.IsRoot = true
	_, err := marshalPage(aRootPage, buf)
	require.NoError(t, err)

	pagerMock.On("TotalPages").Return(uint32(1)).Once()
	pagerMock.On("GetPage", mock.Anything, PageIndex(0)).Return(buf, nil)
	pagerMock.On("Flush", mock.Anything, PageIndex(0)).Return(errTestPager).Once()

	aTable, err := NewTable(ctx, testLogger, pagerMock)
	require.NoError(t, err)

	err = aTable.Insert(ctx, 1, Row{ID: 1})
	require.ErrorIs(t, err, errTestPager)
}
