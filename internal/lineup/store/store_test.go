package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paddock/internal/lineup/models"
	dErrors "paddock/pkg/domain-errors"
)

func sampleRecords() models.Records {
	return models.Records{
		Drivers: []models.Driver{
			{ID: 3, Ref: "rosberg", Forename: "Nico", Surname: "Rosberg"},
			{ID: 1, Ref: "hamilton", Forename: "Lewis", Surname: "Hamilton"},
		},
		Constructors: []models.Constructor{
			{ID: 131, Ref: "mercedes", Name: "Mercedes"},
		},
		Races: []models.Race{
			{ID: 900, Year: 2014, Name: "Australian Grand Prix"},
		},
		Results: []models.Result{
			{ID: 2, RaceID: 900, DriverID: 3, ConstructorID: 131},
			{ID: 1, RaceID: 900, DriverID: 1, ConstructorID: 131},
		},
	}
}

func TestNew(t *testing.T) {
	s, err := New(sampleRecords())
	require.NoError(t, err)

	t.Run("indexes by id", func(t *testing.T) {
		d, ok := s.Driver(1)
		require.True(t, ok)
		assert.Equal(t, "hamilton", d.Ref)

		_, ok = s.Driver(42)
		assert.False(t, ok)

		r, ok := s.Race(900)
		require.True(t, ok)
		assert.Equal(t, models.Year(2014), r.Year)

		res, ok := s.Result(2)
		require.True(t, ok)
		assert.Equal(t, models.DriverID(3), res.DriverID)
	})

	t.Run("indexes by ref", func(t *testing.T) {
		d, ok := s.DriverByRef("rosberg")
		require.True(t, ok)
		assert.Equal(t, models.DriverID(3), d.ID)

		c, ok := s.ConstructorByRef("mercedes")
		require.True(t, ok)
		assert.Equal(t, models.ConstructorID(131), c.ID)

		_, ok = s.ConstructorByRef("brawn")
		assert.False(t, ok)
		_, ok = s.DriverByRef("senna")
		assert.False(t, ok)
	})

	t.Run("id listings are ascending", func(t *testing.T) {
		assert.Equal(t, []models.DriverID{1, 3}, s.DriverIDs())
		assert.Equal(t, []models.ResultID{1, 2}, s.ResultIDs())
		assert.Equal(t, []models.RaceID{900}, s.RaceIDs())
		assert.Equal(t, []models.ConstructorID{131}, s.ConstructorIDs())
	})

	t.Run("counts", func(t *testing.T) {
		assert.Equal(t, Counts{Drivers: 2, Constructors: 1, Races: 1, Results: 2}, s.Counts())
	})
}

func TestNew_RejectsDuplicates(t *testing.T) {
	t.Run("duplicate driver id", func(t *testing.T) {
		recs := sampleRecords()
		recs.Drivers = append(recs.Drivers, models.Driver{ID: 1, Ref: "other"})
		_, err := New(recs)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Contains(t, err.Error(), "duplicate driver id 1")
	})

	t.Run("duplicate constructor ref", func(t *testing.T) {
		recs := sampleRecords()
		recs.Constructors = append(recs.Constructors, models.Constructor{ID: 132, Ref: "mercedes"})
		_, err := New(recs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `constructor ref "mercedes"`)
	})

	t.Run("duplicate result id", func(t *testing.T) {
		recs := sampleRecords()
		recs.Results = append(recs.Results, models.Result{ID: 1})
		_, err := New(recs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate result id 1")
	})

	t.Run("empty refs are not indexed", func(t *testing.T) {
		recs := sampleRecords()
		recs.Drivers = append(recs.Drivers, models.Driver{ID: 10}, models.Driver{ID: 11})
		_, err := New(recs)
		assert.NoError(t, err)
	})
}
