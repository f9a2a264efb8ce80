// Package source defines the ingestion boundary: where raw record streams are
// read and normalized before they reach the record store.
package source

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/store"
)

// Source reads the four record streams. Implementations return records with
// optional fields already normalized to nil.
type Source interface {
	Drivers(ctx context.Context) ([]models.Driver, error)
	Constructors(ctx context.Context) ([]models.Constructor, error)
	Races(ctx context.Context) ([]models.Race, error)
	Results(ctx context.Context) ([]models.Result, error)
}

// Load reads all four streams concurrently. The first failure cancels the
// remaining reads.
func Load(ctx context.Context, src Source) (models.Records, error) {
	var recs models.Records
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		recs.Drivers, err = src.Drivers(gctx)
		return wrap("drivers", err)
	})
	g.Go(func() (err error) {
		recs.Constructors, err = src.Constructors(gctx)
		return wrap("constructors", err)
	})
	g.Go(func() (err error) {
		recs.Races, err = src.Races(gctx)
		return wrap("races", err)
	})
	g.Go(func() (err error) {
		recs.Results, err = src.Results(gctx)
		return wrap("results", err)
	})

	if err := g.Wait(); err != nil {
		return models.Records{}, err
	}
	return recs, nil
}

// LoadStore loads and indexes the records in one step.
func LoadStore(ctx context.Context, src Source) (*store.Store, error) {
	recs, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return store.New(recs)
}

func wrap(stream string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load %s: %w", stream, err)
}
