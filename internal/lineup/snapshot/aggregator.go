package snapshot

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/store"
)

// aggregator is the only writer of pair, driver and constructor aggregates.
// Every traversal is sorted so the outcome does not depend on map order.
type aggregator struct {
	snap   *Snapshot
	store  *store.Store
	logger *slog.Logger
}

func (a *aggregator) run(ctx context.Context) {
	for _, race := range a.racesInOrder() {
		groups := a.groupByConstructor(race)

		ctors := make([]models.ConstructorID, 0, len(groups))
		for ctor := range groups {
			ctors = append(ctors, ctor)
		}
		slices.Sort(ctors)

		for _, ctor := range ctors {
			a.aggregateGroup(ctx, race.rec, ctor, groups[ctor].Sorted())
		}
	}
}

// racesInOrder returns races chronologically (date, then id), which fixes the
// first-seen order of teammate lists.
func (a *aggregator) racesInOrder() []*RaceState {
	races := make([]*RaceState, 0, len(a.snap.races))
	for _, r := range a.snap.races {
		races = append(races, r)
	}
	sort.Slice(races, func(i, j int) bool {
		ri, rj := races[i].rec, races[j].rec
		if !ri.Date.Equal(rj.Date) {
			return ri.Date.Before(rj.Date)
		}
		return ri.ID < rj.ID
	})
	return races
}

func (a *aggregator) groupByConstructor(race *RaceState) map[models.ConstructorID]models.IDSet[models.DriverID] {
	groups := make(map[models.ConstructorID]models.IDSet[models.DriverID])
	for resultID := range race.results {
		res, _ := a.store.Result(resultID)
		g, ok := groups[res.ConstructorID]
		if !ok {
			g = models.IDSet[models.DriverID]{}
			groups[res.ConstructorID] = g
		}
		g.Add(res.DriverID)
	}
	return groups
}

// aggregateGroup applies the group-size policy to the sorted driver ids that
// drove for ctor in race.
func (a *aggregator) aggregateGroup(ctx context.Context, race models.Race, ctor models.ConstructorID, drivers []models.DriverID) {
	switch len(drivers) {
	case 0:
		return
	case 1:
		// Lone entry: keep career history, no pairing.
		a.snap.drivers[drivers[0]].recordSeat(ctor, race.Year)
	case 2:
		a.pair(race, ctor, drivers[0], drivers[1])
	default:
		a.snap.anomalies = append(a.snap.anomalies, Anomaly{
			RaceID:        race.ID,
			Year:          race.Year,
			ConstructorID: ctor,
			DriverIDs:     slices.Clone(drivers),
		})
		a.logger.WarnContext(ctx, "constructor fielded more than two drivers in one race",
			"race_id", race.ID,
			"year", race.Year,
			"constructor_id", ctor,
			"driver_ids", drivers,
		)
		for i := 0; i < len(drivers); i++ {
			for j := i + 1; j < len(drivers); j++ {
				a.pair(race, ctor, drivers[i], drivers[j])
			}
		}
	}
}

func (a *aggregator) pair(race models.Race, ctor models.ConstructorID, d1, d2 models.DriverID) {
	key, ok := models.NewPairKey(d1, d2)
	if !ok {
		return
	}

	p, exists := a.snap.pairs[key]
	if !exists {
		p = newDriverPair(key)
		a.snap.pairs[key] = p
	}
	p.record(race, ctor)

	a.snap.drivers[key.Low].recordTeammate(key, ctor, race.Year)
	a.snap.drivers[key.High].recordTeammate(key, ctor, race.Year)
	a.snap.constructors[ctor].driverPairIDs.Add(key)
}
