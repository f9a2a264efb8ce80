package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/source"
	"paddock/pkg/platform/tx"
)

const (
	insertDriver = `INSERT INTO drivers (driver_id, driver_ref, number, code, forename, surname, dob, nationality, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	insertConstructor = `INSERT INTO constructors (constructor_id, constructor_ref, name, nationality, url, color_primary, color_secondary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	insertRace = `INSERT INTO races (race_id, year, round, circuit_id, name, date)
		VALUES ($1, $2, $3, $4, $5, $6)`
	insertResult = `INSERT INTO results (result_id, race_id, driver_id, constructor_id, grid, position, points, status_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

var truncate = []string{"DELETE FROM results", "DELETE FROM races", "DELETE FROM constructors", "DELETE FROM drivers"}

// Import replaces the table contents with recs in a single transaction.
func Import(ctx context.Context, db *sql.DB, recs models.Records) error {
	return tx.RunInTx(ctx, db, func(ctx context.Context) error {
		exec := tx.ExecutorFor(ctx, db)
		for _, stmt := range truncate {
			if _, err := exec.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("clear tables: %w", err)
			}
		}
		for _, d := range recs.Drivers {
			_, err := exec.ExecContext(ctx, insertDriver,
				int(d.ID), d.Ref, intOrNil(d.Number), stringOrNil(d.Code), d.Forename, d.Surname,
				dateOrNil(d.DateOfBirth), d.Nationality, d.URL)
			if err != nil {
				return fmt.Errorf("insert driver %d: %w", d.ID, err)
			}
		}
		for _, c := range recs.Constructors {
			_, err := exec.ExecContext(ctx, insertConstructor,
				int(c.ID), c.Ref, c.Name, c.Nationality, c.URL, ptrOrNil(c.ColorPrimary), ptrOrNil(c.ColorSecondary))
			if err != nil {
				return fmt.Errorf("insert constructor %d: %w", c.ID, err)
			}
		}
		for _, r := range recs.Races {
			_, err := exec.ExecContext(ctx, insertRace,
				int(r.ID), int(r.Year), r.Round, int(r.CircuitID), r.Name, dateOrNil(r.Date))
			if err != nil {
				return fmt.Errorf("insert race %d: %w", r.ID, err)
			}
		}
		for _, r := range recs.Results {
			_, err := exec.ExecContext(ctx, insertResult,
				int(r.ID), int(r.RaceID), int(r.DriverID), int(r.ConstructorID), r.Grid, intOrNil(r.Position), r.Points, r.StatusID)
			if err != nil {
				return fmt.Errorf("insert result %d: %w", r.ID, err)
			}
		}
		return nil
	})
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func ptrOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func dateOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(source.DateLayout)
}
