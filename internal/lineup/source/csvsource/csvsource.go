// Package csvsource reads Ergast-style CSV exports (drivers.csv,
// constructors.csv, races.csv, results.csv) from a directory.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/source"
)

const (
	DriversFile      = "drivers.csv"
	ConstructorsFile = "constructors.csv"
	RacesFile        = "races.csv"
	ResultsFile      = "results.csv"
)

// Source reads record files from fsys. Columns are matched by header name, so
// extra columns are ignored and column order does not matter.
type Source struct {
	fsys fs.FS
}

func New(fsys fs.FS) *Source {
	return &Source{fsys: fsys}
}

var _ source.Source = (*Source)(nil)

func (s *Source) Drivers(ctx context.Context) ([]models.Driver, error) {
	var out []models.Driver
	err := s.each(ctx, DriversFile, []string{"driverId", "forename", "surname"}, func(r row) error {
		id, err := r.int("driverId")
		if err != nil {
			return err
		}
		number, err := r.optionalInt("number")
		if err != nil {
			return err
		}
		dob, err := r.date("dob")
		if err != nil {
			return err
		}
		out = append(out, models.Driver{
			ID:          models.DriverID(id),
			Ref:         r.str("driverRef"),
			Number:      number,
			Code:        r.str("code"),
			Forename:    r.str("forename"),
			Surname:     r.str("surname"),
			DateOfBirth: dob,
			Nationality: r.str("nationality"),
			URL:         r.str("url"),
		})
		return nil
	})
	return out, err
}

func (s *Source) Constructors(ctx context.Context) ([]models.Constructor, error) {
	var out []models.Constructor
	err := s.each(ctx, ConstructorsFile, []string{"constructorId", "name"}, func(r row) error {
		id, err := r.int("constructorId")
		if err != nil {
			return err
		}
		out = append(out, models.Constructor{
			ID:             models.ConstructorID(id),
			Ref:            r.str("constructorRef"),
			Name:           r.str("name"),
			Nationality:    r.str("nationality"),
			URL:            r.str("url"),
			ColorPrimary:   r.optionalStr("colorPrimary"),
			ColorSecondary: r.optionalStr("colorSecondary"),
		})
		return nil
	})
	return out, err
}

func (s *Source) Races(ctx context.Context) ([]models.Race, error) {
	var out []models.Race
	err := s.each(ctx, RacesFile, []string{"raceId", "year", "date"}, func(r row) error {
		id, err := r.int("raceId")
		if err != nil {
			return err
		}
		year, err := r.int("year")
		if err != nil {
			return err
		}
		round, err := r.optionalInt("round")
		if err != nil {
			return err
		}
		circuit, err := r.optionalInt("circuitId")
		if err != nil {
			return err
		}
		date, err := r.date("date")
		if err != nil {
			return err
		}
		race := models.Race{
			ID:   models.RaceID(id),
			Year: models.Year(year),
			Name: r.str("name"),
			Date: date,
		}
		if round != nil {
			race.Round = *round
		}
		if circuit != nil {
			race.CircuitID = models.CircuitID(*circuit)
		}
		out = append(out, race)
		return nil
	})
	return out, err
}

func (s *Source) Results(ctx context.Context) ([]models.Result, error) {
	var out []models.Result
	required := []string{"resultId", "raceId", "driverId", "constructorId"}
	err := s.each(ctx, ResultsFile, required, func(r row) error {
		ids := make([]int, len(required))
		for i, col := range required {
			n, err := r.int(col)
			if err != nil {
				return err
			}
			ids[i] = n
		}
		position, err := r.optionalInt("position")
		if err != nil {
			return err
		}
		grid, err := r.optionalInt("grid")
		if err != nil {
			return err
		}
		status, err := r.optionalInt("statusId")
		if err != nil {
			return err
		}
		points, err := source.Float(r.get("points"))
		if err != nil {
			return r.fail("points", err)
		}
		res := models.Result{
			ID:            models.ResultID(ids[0]),
			RaceID:        models.RaceID(ids[1]),
			DriverID:      models.DriverID(ids[2]),
			ConstructorID: models.ConstructorID(ids[3]),
			Position:      position,
			Points:        points,
		}
		if grid != nil {
			res.Grid = *grid
		}
		if status != nil {
			res.StatusID = *status
		}
		out = append(out, res)
		return nil
	})
	return out, err
}

// each streams the rows of name through fn, checking ctx between rows.
func (s *Source) each(ctx context.Context, name string, required []string, fn func(row) error) error {
	f, err := s.fsys.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read %s header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return fmt.Errorf("%s: missing column %q", name, c)
		}
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := fn(row{file: name, line: line, cols: cols, rec: rec}); err != nil {
			return err
		}
	}
}

type row struct {
	file string
	line int
	cols map[string]int
	rec  []string
}

func (r row) get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return r.rec[i]
}

func (r row) fail(col string, err error) error {
	return fmt.Errorf("%s line %d column %s: %w", r.file, r.line, col, err)
}

func (r row) str(col string) string          { return source.String(r.get(col)) }
func (r row) optionalStr(col string) *string { return source.OptionalString(r.get(col)) }

func (r row) int(col string) (int, error) {
	n, err := source.Int(r.get(col))
	if err != nil {
		return 0, r.fail(col, err)
	}
	return n, nil
}

func (r row) optionalInt(col string) (*int, error) {
	n, err := source.OptionalInt(r.get(col))
	if err != nil {
		return nil, r.fail(col, err)
	}
	return n, nil
}

func (r row) date(col string) (time.Time, error) {
	d, err := source.Date(r.get(col))
	if err != nil {
		return time.Time{}, r.fail(col, err)
	}
	return d, nil
}
