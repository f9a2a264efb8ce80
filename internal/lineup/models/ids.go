package models

import (
	"fmt"
	"strconv"
)

// Identifiers are distinct integer types so a driver id can never be passed
// where a constructor id is expected.
type (
	DriverID      int
	ConstructorID int
	RaceID        int
	ResultID      int
	CircuitID     int
	Year          int
)

func (id DriverID) String() string      { return strconv.Itoa(int(id)) }
func (id ConstructorID) String() string { return strconv.Itoa(int(id)) }
func (id RaceID) String() string        { return strconv.Itoa(int(id)) }

// PairKey is the canonical identity of an unordered driver pair: Low < High always.
type PairKey struct {
	Low  DriverID
	High DriverID
}

// NewPairKey orders a and b into a canonical key. It returns false when a == b,
// since a driver cannot be paired with themselves.
func NewPairKey(a, b DriverID) (PairKey, bool) {
	switch {
	case a < b:
		return PairKey{Low: a, High: b}, true
	case b < a:
		return PairKey{Low: b, High: a}, true
	default:
		return PairKey{}, false
	}
}

// Other returns the partner of id within the pair.
func (k PairKey) Other(id DriverID) DriverID {
	if id == k.Low {
		return k.High
	}
	return k.Low
}

// Less orders keys by (Low, High).
func (k PairKey) Less(o PairKey) bool {
	if k.Low != o.Low {
		return k.Low < o.Low
	}
	return k.High < o.High
}

func (k PairKey) String() string {
	return fmt.Sprintf("%d-%d", k.Low, k.High)
}
