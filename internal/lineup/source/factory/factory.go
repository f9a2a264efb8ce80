// Package factory opens the record source selected by configuration.
package factory

import (
	"context"
	"fmt"
	"io"
	"os"

	"paddock/internal/lineup/source"
	"paddock/internal/lineup/source/csvsource"
	"paddock/internal/lineup/source/sqlsource"
	"paddock/internal/platform/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured source and a closer for any resources it holds.
// SQL sources get their schema created if it is missing.
func Open(ctx context.Context, cfg config.SourceConfig) (source.Source, io.Closer, error) {
	switch cfg.Kind {
	case config.SourceCSV:
		info, err := os.Stat(cfg.CSVDir)
		if err != nil {
			return nil, nil, fmt.Errorf("csv directory: %w", err)
		}
		if !info.IsDir() {
			return nil, nil, fmt.Errorf("csv directory: %s is not a directory", cfg.CSVDir)
		}
		return csvsource.New(os.DirFS(cfg.CSVDir)), nopCloser{}, nil

	case config.SourceSQL:
		db, err := sqlsource.Open(cfg.DBDriver, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping %s database: %w", cfg.DBDriver, err)
		}
		if err := sqlsource.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlsource.New(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
