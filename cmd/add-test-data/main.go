package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/codingEzio/SimpleDatabase/internal/pkg/logging"
	"github.com/codingEzio/SimpleDatabase/internal/simpledb"
)

const defaultDbFileName = "simple.db"

func main() {
	var (
		dbFilePath = flag.String("db", defaultDbFileName, "database file to fill")
		rowCount   = flag.Int("n", 100, "number of rows to insert")
		seed       = flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := logging.FromEnv("info")
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flushes buffer, if any

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	aDatabase, err := simpledb.Open(ctx, logger, *dbFilePath)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer aDatabase.Close()

	inserted, skipped, err := seedRows(ctx, aDatabase, gofakeit.New(*seed), *rowCount)
	logger.Info("seeded database",
		zap.String("db", *dbFilePath),
		zap.Int64("seed", *seed),
		zap.Int("inserted", inserted),
		zap.Int("skipped_duplicates", skipped),
	)
	if err != nil {
		logger.Error("seeding stopped", zap.Error(err))
	}
}

// seedRows inserts rowCount generated rows. Ids that already exist are
// skipped and counted.
func seedRows(ctx context.Context, aDatabase *simpledb.Database, faker *gofakeit.Faker, rowCount int) (int, int, error) {
	var inserted, skipped int
	for range rowCount {
		username := faker.Username()
		if len(username) > simpledb.UsernameSize {
			username = username[:simpledb.UsernameSize]
		}
		email := faker.Email()
		if len(email) > simpledb.EmailSize {
			email = email[:simpledb.EmailSize]
		}

		err := aDatabase.Insert(ctx, faker.Uint32(), username, email)
		if errors.Is(err, simpledb.ErrDuplicateKey) {
			skipped += 1
			continue
		}
		if err != nil {
			return inserted, skipped, err
		}
		inserted += 1
	}
	return inserted, skipped, nil
}
