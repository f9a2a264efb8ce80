package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates the record tables. Safe to call multiple times.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	// Run statements one by one; not every driver accepts a multi-statement Exec.
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Dates are stored as YYYY-MM-DD text so both drivers read them the same way.
const schema = `
CREATE TABLE IF NOT EXISTS drivers (
    driver_id INTEGER PRIMARY KEY,
    driver_ref TEXT NOT NULL DEFAULT '',
    number INTEGER,
    code TEXT,
    forename TEXT NOT NULL,
    surname TEXT NOT NULL,
    dob TEXT,
    nationality TEXT,
    url TEXT
);

CREATE TABLE IF NOT EXISTS constructors (
    constructor_id INTEGER PRIMARY KEY,
    constructor_ref TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL,
    nationality TEXT,
    url TEXT,
    color_primary TEXT,
    color_secondary TEXT
);

CREATE TABLE IF NOT EXISTS races (
    race_id INTEGER PRIMARY KEY,
    year INTEGER NOT NULL,
    round INTEGER NOT NULL DEFAULT 0,
    circuit_id INTEGER NOT NULL DEFAULT 0,
    name TEXT NOT NULL DEFAULT '',
    date TEXT
);

CREATE INDEX IF NOT EXISTS idx_races_year ON races(year);

CREATE TABLE IF NOT EXISTS results (
    result_id INTEGER PRIMARY KEY,
    race_id INTEGER NOT NULL,
    driver_id INTEGER NOT NULL,
    constructor_id INTEGER NOT NULL,
    grid INTEGER NOT NULL DEFAULT 0,
    position INTEGER,
    points REAL NOT NULL DEFAULT 0,
    status_id INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_results_race_id ON results(race_id);
`
