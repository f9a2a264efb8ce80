package snapshot

import (
	"fmt"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/store"
	dErrors "paddock/pkg/domain-errors"
)

// ReferentialIntegrityError reports a Result that points at a race, driver or
// constructor missing from the store. Aggregates built past it would be silently
// incomplete, so it aborts the build.
type ReferentialIntegrityError struct {
	ResultID  models.ResultID
	Entity    string
	MissingID int
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("result %d references unknown %s %d", e.ResultID, e.Entity, e.MissingID)
}

func (e *ReferentialIntegrityError) Unwrap() error {
	return dErrors.New(dErrors.CodeInvariantViolation, "referential integrity violated")
}

// link walks every result once, in ascending id order, and back-fills race
// membership and driver activity. Only the referenced race and driver change.
func link(s *Snapshot, st *store.Store) error {
	for _, resultID := range st.ResultIDs() {
		res, _ := st.Result(resultID)

		race, ok := s.races[res.RaceID]
		if !ok {
			return &ReferentialIntegrityError{ResultID: res.ID, Entity: "race", MissingID: int(res.RaceID)}
		}
		driver, ok := s.drivers[res.DriverID]
		if !ok {
			return &ReferentialIntegrityError{ResultID: res.ID, Entity: "driver", MissingID: int(res.DriverID)}
		}
		if _, ok := s.constructors[res.ConstructorID]; !ok {
			return &ReferentialIntegrityError{ResultID: res.ID, Entity: "constructor", MissingID: int(res.ConstructorID)}
		}

		race.results.Add(res.ID)
		race.drivers.Add(res.DriverID)
		race.constructors.Add(res.ConstructorID)
		driver.recordRace(race)
	}
	return nil
}
