package source

import (
	"context"

	"paddock/internal/lineup/models"
)

// Static serves records already held in memory.
type Static struct {
	Records models.Records
}

var _ Source = (*Static)(nil)

func (s *Static) Drivers(context.Context) ([]models.Driver, error) { return s.Records.Drivers, nil }
func (s *Static) Constructors(context.Context) ([]models.Constructor, error) {
	return s.Records.Constructors, nil
}
func (s *Static) Races(context.Context) ([]models.Race, error)     { return s.Records.Races, nil }
func (s *Static) Results(context.Context) ([]models.Result, error) { return s.Records.Results, nil }
