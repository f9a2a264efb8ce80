package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NullMarker is the raw-data spelling of a missing value.
const NullMarker = `\N`

// DateLayout is the date format used by the record streams.
const DateLayout = "2006-01-02"

// IsNull reports whether raw is empty or the null marker.
func IsNull(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || raw == NullMarker
}

// String returns raw trimmed, or "" for a null value.
func String(raw string) string {
	if IsNull(raw) {
		return ""
	}
	return strings.TrimSpace(raw)
}

// OptionalString returns nil for a null value.
func OptionalString(raw string) *string {
	if IsNull(raw) {
		return nil
	}
	s := strings.TrimSpace(raw)
	return &s
}

// Int parses a required integer.
func Int(raw string) (int, error) {
	if IsNull(raw) {
		return 0, fmt.Errorf("missing required integer")
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return n, nil
}

// OptionalInt returns nil for a null value.
func OptionalInt(raw string) (*int, error) {
	if IsNull(raw) {
		return nil, nil
	}
	n, err := Int(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Float parses a number, treating null as zero.
func Float(raw string) (float64, error) {
	if IsNull(raw) {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return f, nil
}

// Date parses a calendar date; null yields the zero time.
func Date(raw string) (time.Time, error) {
	if IsNull(raw) {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}
