// Package sqlsource reads the record streams from a SQL database. Postgres
// (lib/pq) and SQLite (modernc.org/sqlite) are supported.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/source"
	"paddock/pkg/platform/tx"
)

// Source is a read-only view over the record tables.
type Source struct {
	db *sql.DB
}

func New(db *sql.DB) *Source {
	return &Source{db: db}
}

var _ source.Source = (*Source)(nil)

const (
	selectDrivers = `SELECT driver_id, driver_ref, number, code, forename, surname, dob, nationality, url
		FROM drivers ORDER BY driver_id`
	selectConstructors = `SELECT constructor_id, constructor_ref, name, nationality, url, color_primary, color_secondary
		FROM constructors ORDER BY constructor_id`
	selectRaces = `SELECT race_id, year, round, circuit_id, name, date
		FROM races ORDER BY race_id`
	selectResults = `SELECT result_id, race_id, driver_id, constructor_id, grid, position, points, status_id
		FROM results ORDER BY result_id`
)

func (s *Source) Drivers(ctx context.Context) ([]models.Driver, error) {
	var out []models.Driver
	err := query(ctx, s.db, selectDrivers, func(rows *sql.Rows) error {
		var (
			d                         models.Driver
			number                    sql.NullInt64
			code, dob, nat, url, dref sql.NullString
		)
		if err := rows.Scan(&d.ID, &dref, &number, &code, &d.Forename, &d.Surname, &dob, &nat, &url); err != nil {
			return err
		}
		date, err := source.Date(dob.String)
		if err != nil {
			return fmt.Errorf("driver %d dob: %w", d.ID, err)
		}
		d.Ref = dref.String
		d.Number = nullInt(number)
		d.Code = source.String(code.String)
		d.DateOfBirth = date
		d.Nationality = nat.String
		d.URL = url.String
		out = append(out, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query drivers: %w", err)
	}
	return out, nil
}

func (s *Source) Constructors(ctx context.Context) ([]models.Constructor, error) {
	var out []models.Constructor
	err := query(ctx, s.db, selectConstructors, func(rows *sql.Rows) error {
		var (
			c                          models.Constructor
			ref, nat, url, prim, secnd sql.NullString
		)
		if err := rows.Scan(&c.ID, &ref, &c.Name, &nat, &url, &prim, &secnd); err != nil {
			return err
		}
		c.Ref = ref.String
		c.Nationality = nat.String
		c.URL = url.String
		c.ColorPrimary = nullString(prim)
		c.ColorSecondary = nullString(secnd)
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query constructors: %w", err)
	}
	return out, nil
}

func (s *Source) Races(ctx context.Context) ([]models.Race, error) {
	var out []models.Race
	err := query(ctx, s.db, selectRaces, func(rows *sql.Rows) error {
		var (
			r    models.Race
			date sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Year, &r.Round, &r.CircuitID, &r.Name, &date); err != nil {
			return err
		}
		d, err := source.Date(date.String)
		if err != nil {
			return fmt.Errorf("race %d date: %w", r.ID, err)
		}
		r.Date = d
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query races: %w", err)
	}
	return out, nil
}

func (s *Source) Results(ctx context.Context) ([]models.Result, error) {
	var out []models.Result
	err := query(ctx, s.db, selectResults, func(rows *sql.Rows) error {
		var (
			r        models.Result
			position sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.RaceID, &r.DriverID, &r.ConstructorID, &r.Grid, &position, &r.Points, &r.StatusID); err != nil {
			return err
		}
		r.Position = nullInt(position)
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	return out, nil
}

func query(ctx context.Context, db *sql.DB, q string, scan func(*sql.Rows) error) error {
	rows, err := tx.ExecutorFor(ctx, db).QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullString(v sql.NullString) *string {
	if !v.Valid || source.IsNull(v.String) {
		return nil
	}
	return &v.String
}
