package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"paddock/internal/lineup/graph"
	"paddock/internal/lineup/models"
	"paddock/internal/lineup/snapshot"
	"paddock/internal/lineup/source"
	"paddock/internal/lineup/source/factory"
	"paddock/internal/lineup/source/sqlsource"
	"paddock/internal/lineup/store"
	"paddock/internal/platform/config"
	"paddock/internal/platform/logger"
)

const (
	GraphFile = "graph.json"
	StyleFile = "ctorMap.json"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out, logOut io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	defaults := config.SourceConfig{
		Kind:     envOr("PADDOCK_SOURCE", config.SourceCSV),
		CSVDir:   envOr("PADDOCK_CSV_DIR", "data"),
		DBDriver: envOr("PADDOCK_DB_DRIVER", sqlsource.DriverPostgres),
		DSN:      os.Getenv("PADDOCK_DB_DSN"),
	}

	opts, shouldExit, err := parseArgs(args, out, defaults)
	if err != nil || shouldExit {
		return err
	}
	log := logger.New(opts.logLevel, "text", logOut)

	src, closer, err := factory.Open(ctx, opts.source)
	if err != nil {
		return fmt.Errorf("open record source: %w", err)
	}
	defer closer.Close()

	recs, err := source.Load(ctx, src)
	if err != nil {
		return err
	}
	st, err := store.New(recs)
	if err != nil {
		return err
	}
	snap, err := snapshot.Build(ctx, st, snapshot.WithLogger(log))
	if err != nil {
		return err
	}
	stats := snap.Stats()
	log.InfoContext(ctx, "snapshot built",
		"drivers", stats.Drivers,
		"pairs", stats.Pairs,
		"anomalies", stats.Anomalies,
	)

	if opts.importDB != "" {
		if err := importRecords(ctx, opts.importDB, opts.importDSN, recs); err != nil {
			return err
		}
		log.InfoContext(ctx, "records imported", "driver", opts.importDB, "results", stats.Results)
	}

	doc := graph.ExportFiltered(snap, opts.filter)
	body, err := graph.Encode(doc, opts.format)
	if err != nil {
		return err
	}
	styles, err := json.Marshal(graph.BuildStyles(st))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	for name, data := range map[string][]byte{GraphFile: body, StyleFile: styles} {
		path := filepath.Join(opts.outDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	log.InfoContext(ctx, "graph exported",
		"dir", opts.outDir,
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
		"format", opts.format.String(),
	)
	return nil
}

func importRecords(ctx context.Context, driver, dsn string, recs models.Records) error {
	db, err := sqlsource.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlsource.CreateSchema(ctx, db); err != nil {
		return err
	}
	return sqlsource.Import(ctx, db, recs)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
