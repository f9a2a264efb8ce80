package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/snapshot"
	dErrors "paddock/pkg/domain-errors"
)

// =============================================================================
// Shortest Path Test Suite
// =============================================================================

type PathSuite struct {
	suite.Suite
	snap *snapshot.Snapshot
}

func TestPathSuite(t *testing.T) {
	suite.Run(t, new(PathSuite))
}

func (s *PathSuite) SetupTest() {
	s.snap = career().build(s.T())
}

func pathIDs(p Path) []models.DriverID {
	out := make([]models.DriverID, 0, len(p.Drivers))
	for _, d := range p.Drivers {
		out = append(out, d.ID)
	}
	return out
}

func (s *PathSuite) TestThroughSharedTeammate() {
	p, err := ShortestPath(s.snap, 2, 3, Filter{Years: AllYears()})
	s.Require().NoError(err)

	s.Equal([]models.DriverID{2, 1, 3}, pathIDs(p))
	s.Equal(2, p.Hops)
	s.Equal(PathDriver{ID: 1, Name: "Lewis Hamilton", Code: "HAM"}, p.Drivers[1])
	s.Equal([]PathLink{
		{Source: 2, Target: 1, Constructors: []PathConstructor{{ConstructorID: 1, Constructor: "McLaren", Years: []models.Year{2008}}}},
		{Source: 1, Target: 3, Constructors: []PathConstructor{{ConstructorID: 131, Constructor: "Mercedes", Years: []models.Year{2013}}}},
	}, p.Links)
}

func (s *PathSuite) TestSameDriver() {
	p, err := ShortestPath(s.snap, 4, 4, Filter{Years: AllYears()})
	s.Require().NoError(err)
	s.Equal([]models.DriverID{4}, pathIDs(p))
	s.Equal(0, p.Hops)
	s.Empty(p.Links)

	out, err := json.Marshal(p)
	s.Require().NoError(err)
	s.JSONEq(`{"drivers":[{"id":4,"name":"Fernando Alonso","code":"ALO"}],"links":[],"hops":0}`, string(out))
}

func (s *PathSuite) TestEqualLengthPathsPreferLowerIDs() {
	// 1-2 and 1-3 in 2010, then 2-4 and 3-4 in 2011: two routes from 1 to 4.
	snap := newFixture().
		race(1, 2010).race(2, 2010).race(3, 2011).race(4, 2011).
		entry(1, 131, 1, 3).
		entry(2, 1, 1, 2).
		entry(3, 131, 3, 4).
		entry(4, 1, 2, 4).
		build(s.T())

	p, err := ShortestPath(snap, 1, 4, Filter{Years: AllYears()})
	s.Require().NoError(err)
	s.Equal([]models.DriverID{1, 2, 4}, pathIDs(p))
}

func (s *PathSuite) TestFilterLimitsTraversal() {
	s.Run("year range removes the bridging driver", func() {
		_, err := ShortestPath(s.snap, 4, 3, Filter{Years: YearRange{Min: 2008, Max: 2013}})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.EqualError(err, "driver 4 is not in the graph for this filter")
	})

	s.Run("race count removes every partner", func() {
		_, err := ShortestPath(s.snap, 1, 3, Filter{Years: AllYears(), MinRaceCount: 2})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PathSuite) TestUnreachable() {
	s.Run("driver without pairings", func() {
		_, err := ShortestPath(s.snap, 1, 8, Filter{Years: AllYears()})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("disconnected components", func() {
		snap := newFixture().
			race(1, 2013).
			entry(1, 131, 1, 3).
			entry(1, 1, 2, 4).
			build(s.T())
		_, err := ShortestPath(snap, 1, 2, Filter{Years: AllYears()})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.EqualError(err, "no teammate path between drivers 1 and 2")
	})

	s.Run("nil snapshot", func() {
		_, err := ShortestPath(nil, 1, 3, Filter{Years: AllYears()})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
