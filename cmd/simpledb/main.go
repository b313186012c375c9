package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/codingEzio/SimpleDatabase/internal/pkg/logging"
	"github.com/codingEzio/SimpleDatabase/internal/simpledb"
)

const defaultDbFileName = "simple.db"

var errInterrupted = errors.New("interrupted")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [db file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	dbFilePath := defaultDbFileName
	if flag.NArg() > 0 {
		dbFilePath = flag.Arg(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := logging.FromEnv("info")
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flushes buffer, if any

	aDatabase, err := simpledb.Open(ctx, logger, dbFilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	session := &repl{
		db:     aDatabase,
		out:    os.Stdout,
		logger: logger,
	}

	// Scanner reads block, lines are handed over so the loop can also
	// stop on a signal.
	lines := make(chan string)
	go func() {
		defer close(lines)
		reader := bufio.NewScanner(os.Stdin)
		for reader.Scan() {
			lines <- reader.Text()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	// REPL (Read-eval-print loop)
	g.Go(func() error {
		defer cancel()
		session.printPrompt()
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					// Print an additional line if we encountered an EOF character
					fmt.Println()
					return nil
				}
				if !session.handle(gctx, line) {
					return nil
				}
				session.printPrompt()
			}
		}
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case <-sigChan:
			fmt.Println()
			return errInterrupted
		case <-gctx.Done():
			return nil
		}
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		exitCode = 1
	}

	if err := aDatabase.Close(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("error closing database: %s", err)))
		exitCode = 1
	}

	if exitCode != 0 {
		logger.Sync()
		os.Exit(exitCode)
	}
}
