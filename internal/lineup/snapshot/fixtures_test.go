package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/store"
)

// recordSet builds small record sets with one result per call to entry.
type recordSet struct {
	recs   models.Records
	nextID models.ResultID
}

func newRecordSet() *recordSet {
	return &recordSet{nextID: 1}
}

func (r *recordSet) driver(id models.DriverID, forename, surname string) *recordSet {
	r.recs.Drivers = append(r.recs.Drivers, models.Driver{
		ID:       id,
		Ref:      surname,
		Forename: forename,
		Surname:  surname,
		Code:     surname[:3],
	})
	return r
}

func (r *recordSet) constructor(id models.ConstructorID, name string) *recordSet {
	r.recs.Constructors = append(r.recs.Constructors, models.Constructor{ID: id, Ref: name, Name: name})
	return r
}

func (r *recordSet) race(id models.RaceID, year models.Year, date string) *recordSet {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	r.recs.Races = append(r.recs.Races, models.Race{ID: id, Year: year, Name: "Grand Prix", Date: d})
	return r
}

func (r *recordSet) entry(race models.RaceID, ctor models.ConstructorID, drivers ...models.DriverID) *recordSet {
	for _, d := range drivers {
		r.recs.Results = append(r.recs.Results, models.Result{
			ID:            r.nextID,
			RaceID:        race,
			DriverID:      d,
			ConstructorID: ctor,
		})
		r.nextID++
	}
	return r
}

func (r *recordSet) build(t *testing.T) *Snapshot {
	t.Helper()
	st, err := store.New(r.recs)
	require.NoError(t, err)
	snap, err := Build(context.Background(), st)
	require.NoError(t, err)
	return snap
}
