// Package cache stores encoded graph documents so repeated queries against
// the same snapshot skip projection and encoding.
package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"paddock/internal/lineup/models"
)

// Key identifies one encoded document. Keys embed the snapshot id, so a new
// snapshot never reads documents built from an older one.
type Key struct {
	SnapshotID uuid.UUID
	MinYear    models.Year
	MaxYear    models.Year
	// MinRaceCount is the driver start threshold; 0 means unfiltered.
	MinRaceCount int
	Format       string
}

func (k Key) String() string {
	return fmt.Sprintf("paddock:graph:%s:%d:%d:%d:%s", k.SnapshotID, k.MinYear, k.MaxYear, k.MinRaceCount, k.Format)
}

// Cache returns sentinel.ErrNotFound from Get on a miss.
type Cache interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, doc []byte) error
}
