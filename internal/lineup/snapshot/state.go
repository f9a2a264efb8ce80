package snapshot

import (
	"slices"
	"sort"
	"time"

	"paddock/internal/lineup/models"
)

// ConstructorYears is one constructor's seasons, ascending.
type ConstructorYears struct {
	ConstructorID models.ConstructorID
	Years         []models.Year
}

// Earliest returns the first season, or 0 when there are none.
func (c ConstructorYears) Earliest() models.Year {
	if len(c.Years) == 0 {
		return 0
	}
	return c.Years[0]
}

// SeasonTeammates lists teammates for one season in first-seen order.
type SeasonTeammates struct {
	Year      models.Year
	Teammates []models.DriverID
}

// ConstructorTeammates is a driver's teammate history at one constructor,
// seasons ascending.
type ConstructorTeammates struct {
	ConstructorID models.ConstructorID
	Seasons       []SeasonTeammates
}

// LatestYear returns the most recent season, or 0 when there are none.
func (c ConstructorTeammates) LatestYear() models.Year {
	if len(c.Seasons) == 0 {
		return 0
	}
	return c.Seasons[len(c.Seasons)-1].Year
}

// TeammateCount is the number of distinct teammates across all seasons.
func (c ConstructorTeammates) TeammateCount() int {
	seen := models.IDSet[models.DriverID]{}
	for _, s := range c.Seasons {
		for _, id := range s.Teammates {
			seen.Add(id)
		}
	}
	return seen.Len()
}

// yearsByConstructor maps a constructor to the seasons spent there.
type yearsByConstructor map[models.ConstructorID]models.YearSet

func (y yearsByConstructor) add(ctor models.ConstructorID, year models.Year) {
	set, ok := y[ctor]
	if !ok {
		set = models.YearSet{}
		y[ctor] = set
	}
	set.Add(year)
}

// entries are sorted by earliest year, then constructor id.
func (y yearsByConstructor) entries() []ConstructorYears {
	out := make([]ConstructorYears, 0, len(y))
	for ctor, years := range y {
		out = append(out, ConstructorYears{ConstructorID: ctor, Years: years.Sorted()})
	}
	sort.Slice(out, func(i, j int) bool {
		ei, ej := out[i].Earliest(), out[j].Earliest()
		if ei != ej {
			return ei < ej
		}
		return out[i].ConstructorID < out[j].ConstructorID
	})
	return out
}

// DriverState is a driver's identity plus the aggregates derived for it in one
// build. It is read-only outside this package.
type DriverState struct {
	rec models.Driver

	yearsActive        models.YearSet
	raceIDs            models.IDSet[models.RaceID]
	teammates          models.IDSet[models.DriverID]
	driverPairs        models.PairKeySet
	yearsByConstructor yearsByConstructor
	// constructor -> season -> teammates in first-seen order
	teammatesByYearByConstructor map[models.ConstructorID]map[models.Year]*models.OrderedSet[models.DriverID]
}

func newDriverState(d models.Driver) *DriverState {
	return &DriverState{
		rec:                          d,
		yearsActive:                  models.YearSet{},
		raceIDs:                      models.IDSet[models.RaceID]{},
		teammates:                    models.IDSet[models.DriverID]{},
		driverPairs:                  models.PairKeySet{},
		yearsByConstructor:           yearsByConstructor{},
		teammatesByYearByConstructor: make(map[models.ConstructorID]map[models.Year]*models.OrderedSet[models.DriverID]),
	}
}

func (d *DriverState) ID() models.DriverID   { return d.rec.ID }
func (d *DriverState) Record() models.Driver { return d.rec }

// YearsActive returns every season with at least one result, ascending.
func (d *DriverState) YearsActive() []models.Year { return d.yearsActive.Sorted() }

// ActiveWithin reports whether any active season lies in [lo, hi].
func (d *DriverState) ActiveWithin(lo, hi models.Year) bool {
	return d.yearsActive.AnyWithin(lo, hi)
}

// FirstYear returns the earliest active season.
func (d *DriverState) FirstYear() (models.Year, bool) { return d.yearsActive.Min() }

func (d *DriverState) RaceIDs() []models.RaceID { return d.raceIDs.Sorted() }
func (d *DriverState) RaceCount() int           { return d.raceIDs.Len() }

// Teammates returns every driver ever paired with this one, ascending.
func (d *DriverState) Teammates() []models.DriverID        { return d.teammates.Sorted() }
func (d *DriverState) HasTeammate(id models.DriverID) bool { return d.teammates.Has(id) }

func (d *DriverState) PairKeys() []models.PairKey { return d.driverPairs.Sorted() }
func (d *DriverState) PairCount() int             { return d.driverPairs.Len() }

// YearsByConstructor returns the driver's career by team, sorted by earliest season.
func (d *DriverState) YearsByConstructor() []ConstructorYears {
	return d.yearsByConstructor.entries()
}

// YearsAt returns the seasons spent at ctor, ascending.
func (d *DriverState) YearsAt(ctor models.ConstructorID) []models.Year {
	set, ok := d.yearsByConstructor[ctor]
	if !ok {
		return nil
	}
	return set.Sorted()
}

// TeammatesAt returns teammates at ctor in year in first-seen order.
func (d *DriverState) TeammatesAt(ctor models.ConstructorID, year models.Year) []models.DriverID {
	byYear, ok := d.teammatesByYearByConstructor[ctor]
	if !ok {
		return nil
	}
	set, ok := byYear[year]
	if !ok {
		return nil
	}
	return set.Items()
}

// TeammatesByConstructor returns teammate history per constructor, ordered by
// constructor id with seasons ascending.
func (d *DriverState) TeammatesByConstructor() []ConstructorTeammates {
	ctors := make([]models.ConstructorID, 0, len(d.teammatesByYearByConstructor))
	for ctor := range d.teammatesByYearByConstructor {
		ctors = append(ctors, ctor)
	}
	slices.Sort(ctors)

	out := make([]ConstructorTeammates, 0, len(ctors))
	for _, ctor := range ctors {
		byYear := d.teammatesByYearByConstructor[ctor]
		years := make([]models.Year, 0, len(byYear))
		for y := range byYear {
			years = append(years, y)
		}
		slices.Sort(years)

		entry := ConstructorTeammates{ConstructorID: ctor, Seasons: make([]SeasonTeammates, 0, len(years))}
		for _, y := range years {
			entry.Seasons = append(entry.Seasons, SeasonTeammates{Year: y, Teammates: byYear[y].Items()})
		}
		out = append(out, entry)
	}
	return out
}

func (d *DriverState) recordRace(race *RaceState) {
	d.yearsActive.Add(race.rec.Year)
	d.raceIDs.Add(race.rec.ID)
}

func (d *DriverState) recordSeat(ctor models.ConstructorID, year models.Year) {
	d.yearsByConstructor.add(ctor, year)
}

func (d *DriverState) recordTeammate(key models.PairKey, ctor models.ConstructorID, year models.Year) {
	other := key.Other(d.rec.ID)
	d.driverPairs.Add(key)
	d.yearsByConstructor.add(ctor, year)
	d.teammates.Add(other)

	byYear, ok := d.teammatesByYearByConstructor[ctor]
	if !ok {
		byYear = make(map[models.Year]*models.OrderedSet[models.DriverID])
		d.teammatesByYearByConstructor[ctor] = byYear
	}
	set, ok := byYear[year]
	if !ok {
		set = &models.OrderedSet[models.DriverID]{}
		byYear[year] = set
	}
	set.Add(other)
}

// ConstructorState is a constructor's identity plus the pairs that raced for it.
type ConstructorState struct {
	rec           models.Constructor
	driverPairIDs models.PairKeySet
}

func newConstructorState(c models.Constructor) *ConstructorState {
	return &ConstructorState{rec: c, driverPairIDs: models.PairKeySet{}}
}

func (c *ConstructorState) ID() models.ConstructorID   { return c.rec.ID }
func (c *ConstructorState) Record() models.Constructor { return c.rec }
func (c *ConstructorState) PairKeys() []models.PairKey { return c.driverPairIDs.Sorted() }
func (c *ConstructorState) PairCount() int             { return c.driverPairIDs.Len() }

// RaceState is a race plus the membership sets filled in by the linker.
type RaceState struct {
	rec          models.Race
	drivers      models.IDSet[models.DriverID]
	constructors models.IDSet[models.ConstructorID]
	results      models.IDSet[models.ResultID]
}

func newRaceState(r models.Race) *RaceState {
	return &RaceState{
		rec:          r,
		drivers:      models.IDSet[models.DriverID]{},
		constructors: models.IDSet[models.ConstructorID]{},
		results:      models.IDSet[models.ResultID]{},
	}
}

func (r *RaceState) ID() models.RaceID                      { return r.rec.ID }
func (r *RaceState) Record() models.Race                    { return r.rec }
func (r *RaceState) DriverIDs() []models.DriverID           { return r.drivers.Sorted() }
func (r *RaceState) ConstructorIDs() []models.ConstructorID { return r.constructors.Sorted() }
func (r *RaceState) ResultIDs() []models.ResultID           { return r.results.Sorted() }

// DriverPair is the accumulated history of two drivers as teammates. A pair may
// span several constructors.
type DriverPair struct {
	key                models.PairKey
	raceIDs            models.IDSet[models.RaceID]
	yearsByConstructor yearsByConstructor
	firstRace          time.Time
	lastRace           time.Time
}

func newDriverPair(key models.PairKey) *DriverPair {
	return &DriverPair{
		key:                key,
		raceIDs:            models.IDSet[models.RaceID]{},
		yearsByConstructor: yearsByConstructor{},
	}
}

func (p *DriverPair) Key() models.PairKey      { return p.key }
func (p *DriverPair) RaceIDs() []models.RaceID { return p.raceIDs.Sorted() }
func (p *DriverPair) RaceCount() int           { return p.raceIDs.Len() }
func (p *DriverPair) FirstRaceDate() time.Time { return p.firstRace }
func (p *DriverPair) LastRaceDate() time.Time  { return p.lastRace }

// YearsByConstructor returns the pair's shared seasons per team, sorted by
// earliest season.
func (p *DriverPair) YearsByConstructor() []ConstructorYears {
	return p.yearsByConstructor.entries()
}

// YearsAt returns the seasons the pair shared at ctor, ascending.
func (p *DriverPair) YearsAt(ctor models.ConstructorID) []models.Year {
	set, ok := p.yearsByConstructor[ctor]
	if !ok {
		return nil
	}
	return set.Sorted()
}

func (p *DriverPair) record(race models.Race, ctor models.ConstructorID) {
	p.raceIDs.Add(race.ID)
	p.yearsByConstructor.add(ctor, race.Year)
	if race.Date.IsZero() {
		return
	}
	if p.firstRace.IsZero() || race.Date.Before(p.firstRace) {
		p.firstRace = race.Date
	}
	if p.lastRace.IsZero() || race.Date.After(p.lastRace) {
		p.lastRace = race.Date
	}
}

// Anomaly records a constructor that fielded more than two drivers in one race.
type Anomaly struct {
	RaceID        models.RaceID
	Year          models.Year
	ConstructorID models.ConstructorID
	DriverIDs     []models.DriverID
}
