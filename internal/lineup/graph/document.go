// Package graph projects a built snapshot into the node/edge document consumed
// by the lineup visualization, and encodes it deterministically.
package graph

import (
	"math"
	"time"

	"paddock/internal/lineup/models"
	dErrors "paddock/pkg/domain-errors"
)

// YearRange is an inclusive season filter.
type YearRange struct {
	Min models.Year
	Max models.Year
}

// AllYears is the effectively unbounded default range.
func AllYears() YearRange {
	return YearRange{Min: math.MinInt32, Max: math.MaxInt32}
}

func (r YearRange) Validate() error {
	if r.Min > r.Max {
		return dErrors.New(dErrors.CodeBadRequest, "min_year must not exceed max_year")
	}
	return nil
}

// Filter narrows an export. Drivers with fewer than MinRaceCount career
// starts are left out along with their edges.
type Filter struct {
	Years        YearRange
	MinRaceCount int
}

func (f Filter) Validate() error {
	if err := f.Years.Validate(); err != nil {
		return err
	}
	if f.MinRaceCount < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "min_race_count must not be negative")
	}
	return nil
}

// Document is the exported graph. Nodes and Edges are never nil.
type Document struct {
	Nodes []Node
	Edges []Edge
}

type Node struct {
	ID                 models.DriverID
	Name               string
	Code               string
	Forename           string
	Surname            string
	YearsByConstructor []ConstructorYears
	// sorted by latest season desc, distinct teammates desc, constructor id asc
	TeammatesByConstructor []ConstructorTeammates
	RaceCount              int

	firstYear models.Year
}

type Edge struct {
	Source             models.DriverID
	Target             models.DriverID
	YearsByConstructor []ConstructorYears
	// zero when no shared race carries a date
	FirstRace time.Time
	LastRace  time.Time
}

// ConstructorYears carries the constructor's display name alongside the
// seasons so the client can label edges without a second lookup.
type ConstructorYears struct {
	ConstructorID models.ConstructorID
	Constructor   string
	Years         []models.Year
}

type Season struct {
	Year      models.Year
	Teammates []models.DriverID
}

type ConstructorTeammates struct {
	ConstructorID models.ConstructorID
	Seasons       []Season
}
