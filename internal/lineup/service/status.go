package service

import (
	"time"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/snapshot"
)

// Status describes the published snapshot for operators.
type Status struct {
	Ready      bool              `json:"ready"`
	SnapshotID string            `json:"snapshot_id,omitempty"`
	BuiltAt    *time.Time        `json:"built_at,omitempty"`
	Stats      *snapshot.Stats   `json:"stats,omitempty"`
	Anomalies  []AnomalyResponse `json:"anomalies,omitempty"`
}

// AnomalyResponse is a constructor entry that fielded more than two drivers.
type AnomalyResponse struct {
	RaceID        models.RaceID        `json:"race_id"`
	Year          models.Year          `json:"year"`
	ConstructorID models.ConstructorID `json:"constructor_id"`
	DriverIDs     []models.DriverID    `json:"driver_ids"`
}

func (s *Service) Status() Status {
	snap := s.holder.Load()
	if snap == nil {
		return Status{}
	}
	builtAt := snap.BuiltAt()
	stats := snap.Stats()
	st := Status{
		Ready:      true,
		SnapshotID: snap.ID().String(),
		BuiltAt:    &builtAt,
		Stats:      &stats,
	}
	for _, a := range snap.Anomalies() {
		st.Anomalies = append(st.Anomalies, AnomalyResponse{
			RaceID:        a.RaceID,
			Year:          a.Year,
			ConstructorID: a.ConstructorID,
			DriverIDs:     a.DriverIDs,
		})
	}
	return st
}
