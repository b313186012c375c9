package simpledb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codingEzio/SimpleDatabase/internal/pkg/logging"
)

var (
	gen = newDataGen(time.Now().Unix())

	testLogger *zap.Logger
)

func init() {
	logConf := logging.DefaultConfig()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "debug"
	}

	l, err := logging.ParseLevel(level)
	if err != nil {
		panic(err)
	}
	logConf.Level = zap.NewAtomicLevelAt(l)

	testLogger, err = logConf.Build()
	if err != nil {
		panic(err)
	}
}

type dataGen struct {
	*gofakeit.Faker
}

func newDataGen(seed int64) *dataGen {
	g := dataGen{
		Faker: gofakeit.New(seed),
	}

	return &g
}

func (g *dataGen) Row() Row {
	username := g.Username()
	if len(username) > UsernameSize {
		username = username[:UsernameSize]
	}
	email := g.Email()
	if len(email) > EmailSize {
		email = email[:EmailSize]
	}
	return Row{
		ID:       g.Uint32(),
		Username: username,
		Email:    email,
	}
}

// Rows returns rows with unique ids in random order.
func (g *dataGen) Rows(number int) []Row {
	idMap := map[uint32]struct{}{}
	rows := make([]Row, 0, number)
	for range number {
		aRow := g.Row()
		_, ok := idMap[aRow.ID]
		for ok {
			aRow = g.Row()
			_, ok = idMap[aRow.ID]
		}
		rows = append(rows, aRow)
		idMap[aRow.ID] = struct{}{}
	}
	return rows
}

// SequentialRows returns rows keyed 1..number in ascending order.
func (g *dataGen) SequentialRows(number int) []Row {
	rows := make([]Row, 0, number)
	for i := range number {
		aRow := g.Row()
		aRow.ID = uint32(i + 1)
		rows = append(rows, aRow)
	}
	return rows
}

func newTestDBFile(t *testing.T) *os.File {
	t.Helper()

	dbFile, err := os.CreateTemp(t.TempDir(), "testdb")
	require.NoError(t, err)
	t.Cleanup(func() { dbFile.Close() })

	return dbFile
}

func newTestTable(ctx context.Context, t *testing.T) (*Table, *pagerImpl, *os.File) {
	t.Helper()

	dbFile := newTestDBFile(t)
	aPager, err := NewPager(dbFile, testLogger)
	require.NoError(t, err)

	aTable, err := NewTable(ctx, testLogger, aPager)
	require.NoError(t, err)

	return aTable, aPager, dbFile
}

func insertRows(ctx context.Context, t *testing.T, aTable *Table, rows []Row) {
	t.Helper()

	for _, aRow := range rows {
		require.NoError(t, aTable.Insert(ctx, aRow.ID, aRow))
	}
}

func selectRows(ctx context.Context, t *testing.T, aTable *Table) []Row {
	t.Helper()

	anIterator, err := aTable.Select(ctx)
	require.NoError(t, err)
	rows, err := anIterator.Collect(ctx)
	require.NoError(t, err)
	return rows
}

// checkTree verifies parent pointers, root flags, key ordering and that
// every separator equals the maximum key of its subtree.
func checkTree(ctx context.Context, t *testing.T, aTable *Table) {
	t.Helper()

	parents := map[PageIndex]PageIndex{}
	err := aTable.Walk(ctx, func(aPage *Page, depth int) error {
		require.Equal(t, depth == 0, aPage.IsRoot(), "page %d root flag", aPage.Index)
		if depth > 0 {
			require.Equal(t, parents[aPage.Index], aPage.parent(), "page %d parent pointer", aPage.Index)
		}

		if aPage.LeafNode != nil {
			keys := aPage.LeafNode.Keys()
			for i := 1; i < len(keys); i++ {
				require.Less(t, keys[i-1], keys[i], "leaf %d keys out of order", aPage.Index)
			}
			return nil
		}

		aNode := aPage.InternalNode
		require.Greater(t, aNode.Header.KeysNum, uint32(0), "internal %d has no keys", aPage.Index)
		for i, aCell := range aNode.ICells {
			aChildPage, err := aTable.readPage(ctx, aCell.Child)
			require.NoError(t, err)
			maxKey, err := aTable.MaxKey(ctx, aChildPage)
			require.NoError(t, err)
			require.Equal(t, maxKey, aCell.Key, "internal %d separator %d", aPage.Index, i)
			if i > 0 {
				require.Less(t, aNode.ICells[i-1].Key, aCell.Key)
			}
		}
		for _, childIdx := range aNode.Children() {
			parents[childIdx] = aPage.Index
		}
		return nil
	})
	require.NoError(t, err)
}

func rowKeys(rows []Row) []uint32 {
	keys := make([]uint32, 0, len(rows))
	for _, aRow := range rows {
		keys = append(keys, aRow.ID)
	}
	return keys
}
