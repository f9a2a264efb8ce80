package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"

	"paddock/internal/lineup/graph"
	"paddock/internal/lineup/models"
	"paddock/internal/platform/config"
)

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

type options struct {
	source    config.SourceConfig
	outDir    string
	filter    graph.Filter
	format    graph.Format
	logLevel  string
	importDB  string
	importDSN string
}

// parseArgs reads flags over defaults taken from the environment. It returns
// shouldExit when help was requested.
func parseArgs(args []string, out io.Writer, defaults config.SourceConfig) (options, bool, error) {
	fs := flag.NewFlagSet("paddock-export", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `
paddock-export - build the teammate graph once and write static JSON files.

Usage:
  paddock-export [options]

Writes graph.json and ctorMap.json to the output directory.

Options:
`)
		fs.PrintDefaults()
	}

	kind := fs.String("source", defaults.Kind, "Record source: 'csv' or 'sql'.")
	csvDir := fs.String("csv-dir", defaults.CSVDir, "Directory holding drivers.csv, constructors.csv, races.csv and results.csv.")
	dbDriver := fs.String("db-driver", defaults.DBDriver, "Database driver for -source=sql: 'postgres' or 'sqlite'.")
	dsn := fs.String("dsn", defaults.DSN, "Database DSN for -source=sql.")
	outDir := fs.String("out", ".", "Output directory.")
	minYear := fs.Int("min-year", math.MinInt32, "First season to include.")
	maxYear := fs.Int("max-year", math.MaxInt32, "Last season to include.")
	minRaces := fs.Int("min-race-count", 0, "Leave out drivers with fewer career starts.")
	format := fs.String("format", "client", "Graph format: 'client', 'snake' or 'camel'.")
	logLevel := fs.String("log-level", "info", "Log level: 'debug', 'info', 'warn', 'error'.")
	importDB := fs.String("import-db-driver", "", "Also copy the loaded records into this database driver.")
	importDSN := fs.String("import-dsn", "", "DSN of the database to copy records into.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return options{}, true, nil
		}
		return options{}, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 0 {
		return options{}, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}

	f, err := graph.ParseFormat(*format)
	if err != nil {
		return options{}, false, &ExitError{Code: 2, Message: err.Error()}
	}
	filter := graph.Filter{
		Years:        graph.YearRange{Min: models.Year(*minYear), Max: models.Year(*maxYear)},
		MinRaceCount: *minRaces,
	}
	if err := filter.Validate(); err != nil {
		return options{}, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if (*importDB == "") != (*importDSN == "") {
		return options{}, false, &ExitError{Code: 2, Message: "-import-db-driver and -import-dsn must be set together"}
	}

	return options{
		source: config.SourceConfig{
			Kind:     *kind,
			CSVDir:   *csvDir,
			DBDriver: *dbDriver,
			DSN:      *dsn,
		},
		outDir:    *outDir,
		filter:    filter,
		format:    f,
		logLevel:  *logLevel,
		importDB:  *importDB,
		importDSN: *importDSN,
	}, false, nil
}
