// Package events announces snapshot lifecycle changes to downstream
// consumers (static site rebuilds, cache warmers).
package events

import (
	"context"
	"time"

	"paddock/internal/lineup/snapshot"
)

type Type string

const (
	TypePublished Type = "snapshot.published"
	TypeFailed    Type = "snapshot.failed"
)

// Event is transport-agnostic; publishers decide the wire encoding.
type Event struct {
	Type       Type            `json:"type"`
	SnapshotID string          `json:"snapshot_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Stats      *snapshot.Stats `json:"stats,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Published describes a snapshot that was just swapped in.
func Published(s *snapshot.Snapshot) Event {
	stats := s.Stats()
	return Event{
		Type:       TypePublished,
		SnapshotID: s.ID().String(),
		OccurredAt: s.BuiltAt(),
		Stats:      &stats,
	}
}

// Failed describes a rebuild that was rejected. current is the snapshot still
// being served, and may be nil.
func Failed(current *snapshot.Snapshot, at time.Time, err error) Event {
	e := Event{Type: TypeFailed, OccurredAt: at, Error: err.Error()}
	if current != nil {
		e.SnapshotID = current.ID().String()
	}
	return e
}

// Publisher delivers events. Delivery failures are reported but never undo a
// snapshot swap.
type Publisher interface {
	Emit(ctx context.Context, e Event) error
	Close() error
}
