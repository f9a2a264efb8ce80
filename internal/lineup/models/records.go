package models

import (
	"strings"
	"time"
)

// Driver is the identity record of a driver as ingested. Optional values are
// nil when the source had no data.
type Driver struct {
	ID          DriverID
	Ref         string
	Number      *int
	Code        string
	Forename    string
	Surname     string
	DateOfBirth time.Time
	Nationality string
	URL         string
}

// DisplayName is "Forename Surname", trimmed when either part is missing.
func (d Driver) DisplayName() string {
	return strings.TrimSpace(d.Forename + " " + d.Surname)
}

// Constructor is a team entity. Colors are display metadata supplied alongside
// the source data; nil when unknown.
type Constructor struct {
	ID             ConstructorID
	Ref            string
	Name           string
	Nationality    string
	URL            string
	ColorPrimary   *string
	ColorSecondary *string
}

// Race is a single event in a season.
type Race struct {
	ID        RaceID
	Year      Year
	Round     int
	CircuitID CircuitID
	Name      string
	Date      time.Time
}

// Result links one driver to one constructor in one race. A nil Position means
// the driver was not classified (retired, disqualified, did not finish).
type Result struct {
	ID            ResultID
	RaceID        RaceID
	DriverID      DriverID
	ConstructorID ConstructorID
	Grid          int
	Position      *int
	Points        float64
	StatusID      int
}

// Classified reports whether the result has a finishing position.
func (r Result) Classified() bool {
	return r.Position != nil
}

// Records is one complete load of the four record streams.
type Records struct {
	Drivers      []Driver
	Constructors []Constructor
	Races        []Race
	Results      []Result
}
