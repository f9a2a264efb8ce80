// Package store holds the normalized record set for one ingestion run, indexed
// by identifier and by reference string. It carries no business logic and is
// read-only once built, so lookups need no locking.
package store

import (
	"fmt"
	"slices"

	"paddock/internal/lineup/models"
	dErrors "paddock/pkg/domain-errors"
)

type Store struct {
	drivers      map[models.DriverID]models.Driver
	driverRefs   map[string]models.DriverID
	constructors map[models.ConstructorID]models.Constructor
	ctorRefs     map[string]models.ConstructorID
	races        map[models.RaceID]models.Race
	results      map[models.ResultID]models.Result
}

// New indexes records. Duplicate ids, or duplicate non-empty refs, mean the
// source is malformed and are rejected.
func New(records models.Records) (*Store, error) {
	s := &Store{
		drivers:      make(map[models.DriverID]models.Driver, len(records.Drivers)),
		driverRefs:   make(map[string]models.DriverID, len(records.Drivers)),
		constructors: make(map[models.ConstructorID]models.Constructor, len(records.Constructors)),
		ctorRefs:     make(map[string]models.ConstructorID, len(records.Constructors)),
		races:        make(map[models.RaceID]models.Race, len(records.Races)),
		results:      make(map[models.ResultID]models.Result, len(records.Results)),
	}

	for _, d := range records.Drivers {
		if _, dup := s.drivers[d.ID]; dup {
			return nil, duplicate("driver", int(d.ID))
		}
		s.drivers[d.ID] = d
		if d.Ref != "" {
			if other, dup := s.driverRefs[d.Ref]; dup {
				return nil, dErrors.New(dErrors.CodeInvariantViolation,
					fmt.Sprintf("driver ref %q used by drivers %d and %d", d.Ref, other, d.ID))
			}
			s.driverRefs[d.Ref] = d.ID
		}
	}
	for _, c := range records.Constructors {
		if _, dup := s.constructors[c.ID]; dup {
			return nil, duplicate("constructor", int(c.ID))
		}
		s.constructors[c.ID] = c
		if c.Ref != "" {
			if other, dup := s.ctorRefs[c.Ref]; dup {
				return nil, dErrors.New(dErrors.CodeInvariantViolation,
					fmt.Sprintf("constructor ref %q used by constructors %d and %d", c.Ref, other, c.ID))
			}
			s.ctorRefs[c.Ref] = c.ID
		}
	}
	for _, r := range records.Races {
		if _, dup := s.races[r.ID]; dup {
			return nil, duplicate("race", int(r.ID))
		}
		s.races[r.ID] = r
	}
	for _, r := range records.Results {
		if _, dup := s.results[r.ID]; dup {
			return nil, duplicate("result", int(r.ID))
		}
		s.results[r.ID] = r
	}
	return s, nil
}

func duplicate(entity string, id int) error {
	return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("duplicate %s id %d", entity, id))
}

func (s *Store) Driver(id models.DriverID) (models.Driver, bool) {
	d, ok := s.drivers[id]
	return d, ok
}

func (s *Store) DriverByRef(ref string) (models.Driver, bool) {
	id, ok := s.driverRefs[ref]
	if !ok {
		return models.Driver{}, false
	}
	return s.drivers[id], true
}

func (s *Store) Constructor(id models.ConstructorID) (models.Constructor, bool) {
	c, ok := s.constructors[id]
	return c, ok
}

func (s *Store) ConstructorByRef(ref string) (models.Constructor, bool) {
	id, ok := s.ctorRefs[ref]
	if !ok {
		return models.Constructor{}, false
	}
	return s.constructors[id], true
}

func (s *Store) Race(id models.RaceID) (models.Race, bool) {
	r, ok := s.races[id]
	return r, ok
}

func (s *Store) Result(id models.ResultID) (models.Result, bool) {
	r, ok := s.results[id]
	return r, ok
}

// DriverIDs returns every driver id in ascending order.
func (s *Store) DriverIDs() []models.DriverID {
	return sortedKeys(s.drivers)
}

// ConstructorIDs returns every constructor id in ascending order.
func (s *Store) ConstructorIDs() []models.ConstructorID {
	return sortedKeys(s.constructors)
}

// RaceIDs returns every race id in ascending order.
func (s *Store) RaceIDs() []models.RaceID {
	return sortedKeys(s.races)
}

// ResultIDs returns every result id in ascending order.
func (s *Store) ResultIDs() []models.ResultID {
	return sortedKeys(s.results)
}

// Counts summarizes the store for logging and status reporting.
type Counts struct {
	Drivers      int `json:"drivers"`
	Constructors int `json:"constructors"`
	Races        int `json:"races"`
	Results      int `json:"results"`
}

func (s *Store) Counts() Counts {
	return Counts{
		Drivers:      len(s.drivers),
		Constructors: len(s.constructors),
		Races:        len(s.races),
		Results:      len(s.results),
	}
}

func sortedKeys[K ~int, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
