package graph

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/snapshot"
	"paddock/internal/lineup/store"
	dErrors "paddock/pkg/domain-errors"
)

type fixture struct {
	recs   models.Records
	nextID models.ResultID
}

func newFixture() *fixture {
	f := &fixture{nextID: 1}
	f.recs.Constructors = []models.Constructor{
		{ID: 1, Ref: "mclaren", Name: "McLaren"},
		{ID: 131, Ref: "mercedes", Name: "Mercedes"},
	}
	f.recs.Drivers = []models.Driver{
		{ID: 1, Ref: "hamilton", Code: "HAM", Forename: "Lewis", Surname: "Hamilton"},
		{ID: 2, Ref: "heikki", Code: "KOV", Forename: "Heikki", Surname: "Kovalainen"},
		{ID: 3, Ref: "rosberg", Code: "ROS", Forename: "Nico", Surname: "Rosberg"},
		{ID: 4, Ref: "alonso", Code: "ALO", Forename: "Fernando", Surname: "Alonso"},
		{ID: 8, Ref: "kimi", Code: "RAI", Forename: "Kimi", Surname: "Raikkonen"},
	}
	return f
}

func (f *fixture) race(id models.RaceID, year models.Year) *fixture {
	f.recs.Races = append(f.recs.Races, models.Race{
		ID: id, Year: year, Name: "Grand Prix",
		Date: time.Date(int(year), 3, int(id%28)+1, 0, 0, 0, 0, time.UTC),
	})
	return f
}

func day(year, dayOfMonth int) time.Time {
	return time.Date(year, 3, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) entry(race models.RaceID, ctor models.ConstructorID, drivers ...models.DriverID) *fixture {
	for _, d := range drivers {
		f.recs.Results = append(f.recs.Results, models.Result{ID: f.nextID, RaceID: race, DriverID: d, ConstructorID: ctor})
		f.nextID++
	}
	return f
}

func (f *fixture) build(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	st, err := store.New(f.recs)
	require.NoError(t, err)
	snap, err := snapshot.Build(context.Background(), st)
	require.NoError(t, err)
	return snap
}

// career builds a small, overlapping history:
// 2007 McLaren Alonso/Hamilton, 2008 McLaren Hamilton/Kovalainen,
// 2013 Mercedes Hamilton/Rosberg, 2013 McLaren Raikkonen alone.
func career() *fixture {
	return newFixture().
		race(1, 2007).race(2, 2008).race(3, 2013).
		entry(1, 1, 4, 1).
		entry(2, 1, 1, 2).
		entry(3, 131, 1, 3).
		entry(3, 1, 8)
}

// =============================================================================
// Export Test Suite
// =============================================================================

type ExportSuite struct {
	suite.Suite
	snap *snapshot.Snapshot
}

func TestExportSuite(t *testing.T) {
	suite.Run(t, new(ExportSuite))
}

func (s *ExportSuite) SetupTest() {
	s.snap = career().build(s.T())
}

func nodeIDs(doc Document) []models.DriverID {
	out := make([]models.DriverID, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		out = append(out, n.ID)
	}
	return out
}

func (s *ExportSuite) TestNodeInclusion() {
	s.Run("drivers without pairings are excluded", func() {
		doc := Export(s.snap, AllYears())
		s.NotContains(nodeIDs(doc), models.DriverID(8))
	})

	s.Run("nodes ordered by earliest active year descending", func() {
		doc := Export(s.snap, AllYears())
		// Rosberg 2013, Kovalainen 2008, then Hamilton and Alonso from 2007 by id.
		s.Equal([]models.DriverID{3, 2, 1, 4}, nodeIDs(doc))
	})

	s.Run("empty range yields empty document", func() {
		doc := Export(s.snap, YearRange{Min: 2025, Max: 2025})
		s.NotNil(doc.Nodes)
		s.NotNil(doc.Edges)
		s.Empty(doc.Nodes)
		s.Empty(doc.Edges)

		out, err := Encode(doc, FormatSnake)
		s.Require().NoError(err)
		s.JSONEq(`{"nodes": [], "edges": []}`, string(out))
	})

	s.Run("nil snapshot yields empty document", func() {
		out, err := Encode(Export(nil, AllYears()), FormatClient)
		s.Require().NoError(err)
		s.Equal(`{"nodes":[],"edges":[]}`, string(out))
	})
}

func (s *ExportSuite) TestEdgeFiltering() {
	s.Run("edges touching an excluded driver are dropped", func() {
		doc := Export(s.snap, YearRange{Min: 2008, Max: 2013})

		s.NotContains(nodeIDs(doc), models.DriverID(4), "Alonso only raced in 2007")
		s.Contains(nodeIDs(doc), models.DriverID(1))
		for _, e := range doc.Edges {
			s.NotEqual(models.DriverID(4), e.Source)
			s.NotEqual(models.DriverID(4), e.Target)
		}
		s.Len(doc.Edges, 2)
	})

	s.Run("no orphan edges", func() {
		for _, r := range []YearRange{AllYears(), {Min: 2007, Max: 2007}, {Min: 2013, Max: 2020}} {
			doc := Export(s.snap, r)
			ids := models.IDSet[models.DriverID]{}
			for _, n := range doc.Nodes {
				ids.Add(n.ID)
			}
			for _, e := range doc.Edges {
				s.True(ids.Has(e.Source) && ids.Has(e.Target), "edge %d-%d in %v", e.Source, e.Target, r)
			}
		}
	})

	s.Run("edges sorted by pair key", func() {
		doc := Export(s.snap, AllYears())
		s.Require().Len(doc.Edges, 3)
		s.Equal([]Edge{
			{
				Source: 1, Target: 2,
				YearsByConstructor: []ConstructorYears{{ConstructorID: 1, Constructor: "McLaren", Years: []models.Year{2008}}},
				FirstRace:          day(2008, 3), LastRace: day(2008, 3),
			},
			{
				Source: 1, Target: 3,
				YearsByConstructor: []ConstructorYears{{ConstructorID: 131, Constructor: "Mercedes", Years: []models.Year{2013}}},
				FirstRace:          day(2013, 4), LastRace: day(2013, 4),
			},
			{
				Source: 1, Target: 4,
				YearsByConstructor: []ConstructorYears{{ConstructorID: 1, Constructor: "McLaren", Years: []models.Year{2007}}},
				FirstRace:          day(2007, 2), LastRace: day(2007, 2),
			},
		}, doc.Edges)
	})

	s.Run("edge spans the pair's first and last shared race", func() {
		snap := newFixture().
			race(1, 2007).race(5, 2007).race(9, 2008).
			entry(1, 1, 1, 4).
			entry(5, 1, 1, 4).
			entry(9, 1, 1, 4).
			build(s.T())
		doc := Export(snap, AllYears())
		s.Require().Len(doc.Edges, 1)
		s.Equal(day(2007, 2), doc.Edges[0].FirstRace)
		s.Equal(day(2008, 10), doc.Edges[0].LastRace)
	})
}

func (s *ExportSuite) TestDriverWithoutEdgeInRangeIsExcluded() {
	// Alonso partnered Hamilton in 2007 and raced alone for McLaren in 2013,
	// while Hamilton sat out 2013.
	snap := newFixture().
		race(1, 2007).race(2, 2013).
		entry(1, 1, 1, 4).
		entry(2, 1, 4).
		build(s.T())

	s.Run("active with pairings but no partner in range", func() {
		doc := Export(snap, YearRange{Min: 2013, Max: 2013})
		s.Empty(doc.Nodes)
		s.Empty(doc.Edges)
	})

	s.Run("partner back in range restores the node", func() {
		doc := Export(snap, YearRange{Min: 2007, Max: 2013})
		s.Equal([]models.DriverID{1, 4}, nodeIDs(doc))
		s.Len(doc.Edges, 1)
	})

	s.Run("every node touches an edge", func() {
		for _, r := range []YearRange{AllYears(), {Min: 2008, Max: 2013}, {Min: 2013, Max: 2013}} {
			doc := Export(s.snap, r)
			linked := models.IDSet[models.DriverID]{}
			for _, e := range doc.Edges {
				linked.Add(e.Source)
				linked.Add(e.Target)
			}
			for _, n := range doc.Nodes {
				s.True(linked.Has(n.ID), "node %d in %v", n.ID, r)
			}
		}
	})
}

func (s *ExportSuite) TestMinRaceCount() {
	// Hamilton has three starts, everyone else one.
	s.Run("zero keeps the unfiltered graph", func() {
		s.Equal(Export(s.snap, AllYears()), ExportFiltered(s.snap, Filter{Years: AllYears()}))
	})

	s.Run("drops drivers below the threshold and their edges", func() {
		doc := ExportFiltered(s.snap, Filter{Years: AllYears(), MinRaceCount: 2})
		s.Empty(doc.Nodes, "Hamilton is left without a qualifying partner")
		s.Empty(doc.Edges)
	})

	s.Run("threshold met by both endpoints", func() {
		snap := newFixture().
			race(1, 2013).race(2, 2013).race(3, 2013).
			entry(1, 131, 1, 3).
			entry(2, 131, 1, 3).
			entry(3, 131, 1).entry(3, 1, 2, 4).
			build(s.T())
		doc := ExportFiltered(snap, Filter{Years: AllYears(), MinRaceCount: 2})
		s.Equal([]models.DriverID{1, 3}, nodeIDs(doc))
		s.Require().Len(doc.Edges, 1)
		s.Equal(models.DriverID(3), doc.Edges[0].Target)
	})
}

func (s *ExportSuite) TestNodePayload() {
	doc := Export(s.snap, AllYears())
	var ham Node
	for _, n := range doc.Nodes {
		if n.ID == 1 {
			ham = n
		}
	}
	s.Equal("Lewis Hamilton", ham.Name)
	s.Equal("HAM", ham.Code)
	s.Equal(3, ham.RaceCount)
	s.Equal([]ConstructorYears{
		{ConstructorID: 1, Constructor: "McLaren", Years: []models.Year{2007, 2008}},
		{ConstructorID: 131, Constructor: "Mercedes", Years: []models.Year{2013}},
	}, ham.YearsByConstructor)
	s.Equal([]ConstructorTeammates{
		{ConstructorID: 131, Seasons: []Season{{Year: 2013, Teammates: []models.DriverID{3}}}},
		{ConstructorID: 1, Seasons: []Season{
			{Year: 2007, Teammates: []models.DriverID{4}},
			{Year: 2008, Teammates: []models.DriverID{2}},
		}},
	}, ham.TeammatesByConstructor)
}

func TestTeammateOrdering_TieOnLatestYearUsesTeammateCount(t *testing.T) {
	// Hamilton drives for both constructors in 2010: two McLaren teammates,
	// one Mercedes teammate.
	snap := newFixture().
		race(1, 2010).race(2, 2010).race(3, 2010).
		entry(1, 131, 1, 3).
		entry(2, 1, 1, 2).
		entry(3, 1, 1, 4).
		build(t)

	doc := Export(snap, AllYears())
	for _, n := range doc.Nodes {
		if n.ID != 1 {
			continue
		}
		require.Len(t, n.TeammatesByConstructor, 2)
		assert.Equal(t, models.ConstructorID(1), n.TeammatesByConstructor[0].ConstructorID)
		assert.Equal(t, []models.DriverID{2, 4}, n.TeammatesByConstructor[0].Seasons[0].Teammates)
		assert.Equal(t, models.ConstructorID(131), n.TeammatesByConstructor[1].ConstructorID)
		return
	}
	t.Fatal("driver 1 missing from export")
}

// =============================================================================
// Encoding Test Suite
// =============================================================================

type EncodeSuite struct {
	suite.Suite
}

func TestEncodeSuite(t *testing.T) {
	suite.Run(t, new(EncodeSuite))
}

func (s *EncodeSuite) pairDoc() Document {
	snap := newFixture().race(1, 2020).entry(1, 131, 3, 1).build(s.T())
	return Export(snap, AllYears())
}

func (s *EncodeSuite) TestSnakeCase() {
	out, err := Encode(s.pairDoc(), FormatSnake)
	s.Require().NoError(err)
	s.Equal(`{"nodes":[`+
		`{"id":1,"name":"Lewis Hamilton","code":"HAM","forename":"Lewis","surname":"Hamilton",`+
		`"years_by_constructor":[{"constructor":"Mercedes","constructor_id":131,"years":[2020]}],`+
		`"teammates_by_year_by_constructor":[{"constructor_id":131,"years":[{"year":2020,"teammates":[3]}]}],`+
		`"race_count":1},`+
		`{"id":3,"name":"Nico Rosberg","code":"ROS","forename":"Nico","surname":"Rosberg",`+
		`"years_by_constructor":[{"constructor":"Mercedes","constructor_id":131,"years":[2020]}],`+
		`"teammates_by_year_by_constructor":[{"constructor_id":131,"years":[{"year":2020,"teammates":[1]}]}],`+
		`"race_count":1}],`+
		`"edges":[{"source":1,"target":3,"years_by_constructor":[{"constructor":"Mercedes","constructor_id":131,"years":[2020]}],`+
		`"first_race_date":"2020-03-02","last_race_date":"2020-03-02"}]}`,
		string(out))
}

func (s *EncodeSuite) TestClientFormat() {
	out, err := Encode(s.pairDoc(), FormatClient)
	s.Require().NoError(err)

	var decoded struct {
		Nodes []struct {
			Data map[string]any `json:"data"`
		} `json:"nodes"`
		Edges []struct {
			Data map[string]any `json:"data"`
		} `json:"edges"`
	}
	s.Require().NoError(json.Unmarshal(out, &decoded))
	s.Require().Len(decoded.Nodes, 2)
	s.Require().Len(decoded.Edges, 1)

	node := decoded.Nodes[0].Data
	s.Equal("1", node["id"])
	s.Equal("HAM", node["codename"])
	s.Equal(float64(1), node["raceCount"])
	s.Contains(node, "yearsByCtor")
	s.Equal([]any{
		map[string]any{"ctorId": float64(131), "years": []any{[]any{float64(2020), []any{float64(3)}}}},
	}, node["teammatesByYearByCtor"])

	edge := decoded.Edges[0].Data
	s.Equal("1", edge["source"])
	s.Equal("3", edge["target"])
	s.Equal([]any{
		map[string]any{"ctor": "Mercedes", "ctorId": float64(131), "years": []any{float64(2020)}},
	}, edge["yearsByCtor"])
	s.Equal("2020-03-02", edge["firstRaceDate"])
	s.Equal("2020-03-02", edge["lastRaceDate"])
}

func (s *EncodeSuite) TestCamelCase() {
	out, err := Encode(s.pairDoc(), FormatCamel)
	s.Require().NoError(err)
	s.Contains(string(out), `"yearsByConstructor":[{"constructor":"Mercedes","constructorId":131`)
	s.Contains(string(out), `"teammatesByYearByConstructor":[{"constructorId":131,"years":[{"year":2020,"teammates":[3]}]}]`)
	s.Contains(string(out), `"raceCount":1`)
	s.Contains(string(out), `"firstRaceDate":"2020-03-02","lastRaceDate":"2020-03-02"`)
	s.NotContains(string(out), `"data"`)
}

func (s *EncodeSuite) TestUndatedEdgeWritesNull() {
	doc := Document{
		Nodes: []Node{},
		Edges: []Edge{{Source: 1, Target: 3, FirstRace: day(2013, 17)}},
	}
	out, err := Encode(doc, FormatSnake)
	s.Require().NoError(err)
	s.Equal(`{"nodes":[],"edges":[{"source":1,"target":3,"years_by_constructor":[],`+
		`"first_race_date":"2013-03-17","last_race_date":null}]}`, string(out))
}

func (s *EncodeSuite) TestRoundTripIsByteIdentical() {
	first, err := Encode(Export(career().build(s.T()), AllYears()), FormatClient)
	s.Require().NoError(err)
	for i := 0; i < 5; i++ {
		again, err := Encode(Export(career().build(s.T()), AllYears()), FormatClient)
		s.Require().NoError(err)
		s.Equal(string(first), string(again))
	}
}

func (s *EncodeSuite) TestParseFormat() {
	cases := []struct {
		in   string
		want Format
	}{
		{"", FormatSnake},
		{"snake", FormatSnake},
		{"Camel", FormatCamel},
		{" client ", FormatClient},
	}
	for _, tc := range cases {
		s.Run(tc.in, func() {
			got, err := ParseFormat(tc.in)
			s.Require().NoError(err)
			s.Equal(tc.want, got)
		})
	}

	s.Run("unknown", func() {
		_, err := ParseFormat("xml")
		s.Error(err)
	})
}

func (s *EncodeSuite) TestFormatString() {
	s.Equal("snake", FormatSnake.String())
	s.Equal("camel", FormatCamel.String())
	s.Equal("client", FormatClient.String())
	s.Equal("camel+wrap+strids", Format{Naming: CamelCase, Wrap: true, StringIDs: true}.String())
	s.Equal("client+wrap", Format{Naming: ClientNaming, Wrap: true}.String())
}

func TestYearRange(t *testing.T) {
	assert.NoError(t, AllYears().Validate())
	assert.Error(t, YearRange{Min: 2021, Max: 2020}.Validate())
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{Years: AllYears(), MinRaceCount: 10}.Validate())

	err := Filter{Years: AllYears(), MinRaceCount: -1}.Validate()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.EqualError(t, err, "min_race_count must not be negative")

	assert.Error(t, Filter{Years: YearRange{Min: 2021, Max: 2020}}.Validate())
}
