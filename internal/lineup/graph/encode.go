package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	dErrors "paddock/pkg/domain-errors"
)

// Naming selects the field names written at the serialization boundary.
type Naming int

const (
	SnakeCase Naming = iota
	CamelCase
	// ClientNaming uses the names the visualization client reads
	// (codename, yearsByCtor, teammatesByYearByCtor, ...).
	ClientNaming
)

func (n Naming) String() string {
	switch n {
	case CamelCase:
		return "camel"
	case ClientNaming:
		return "client"
	default:
		return "snake"
	}
}

// Format controls how a Document is written. Wrap nests each element as
// {"data": {...}}, StringIDs writes node and endpoint ids as strings.
type Format struct {
	Naming    Naming
	Wrap      bool
	StringIDs bool
}

var (
	FormatSnake  = Format{Naming: SnakeCase}
	FormatCamel  = Format{Naming: CamelCase}
	FormatClient = Format{Naming: ClientNaming, Wrap: true, StringIDs: true}
)

var namedFormats = map[string]Format{
	"":       FormatSnake,
	"snake":  FormatSnake,
	"camel":  FormatCamel,
	"client": FormatClient,
}

// ParseFormat resolves a format name as accepted on the query string.
func ParseFormat(name string) (Format, error) {
	f, ok := namedFormats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown format %q", name))
	}
	return f, nil
}

// String is stable and distinguishes every Format value, so it is safe to use
// in cache keys.
func (f Format) String() string {
	if f == FormatClient {
		return "client"
	}
	s := f.Naming.String()
	if f.Wrap {
		s += "+wrap"
	}
	if f.StringIDs {
		s += "+strids"
	}
	return s
}

type fieldNames struct {
	id, name, code, forename, surname string
	yearsByConstructor                string
	constructor, constructorID, years string
	teammatesByConstructor            string
	year, teammates                   string
	raceCount                         string
	source, target                    string
	firstRace, lastRace               string
	seasonTuples                      bool
}

var names = map[Naming]fieldNames{
	SnakeCase: {
		id: "id", name: "name", code: "code", forename: "forename", surname: "surname",
		yearsByConstructor: "years_by_constructor",
		constructor:        "constructor", constructorID: "constructor_id", years: "years",
		teammatesByConstructor: "teammates_by_year_by_constructor",
		year:                   "year", teammates: "teammates",
		raceCount: "race_count",
		source:    "source", target: "target",
		firstRace: "first_race_date", lastRace: "last_race_date",
	},
	CamelCase: {
		id: "id", name: "name", code: "code", forename: "forename", surname: "surname",
		yearsByConstructor: "yearsByConstructor",
		constructor:        "constructor", constructorID: "constructorId", years: "years",
		teammatesByConstructor: "teammatesByYearByConstructor",
		year:                   "year", teammates: "teammates",
		raceCount: "raceCount",
		source:    "source", target: "target",
		firstRace: "firstRaceDate", lastRace: "lastRaceDate",
	},
	ClientNaming: {
		id: "id", name: "name", code: "codename", forename: "forename", surname: "surname",
		yearsByConstructor: "yearsByCtor",
		constructor:        "ctor", constructorID: "ctorId", years: "years",
		teammatesByConstructor: "teammatesByYearByCtor",
		raceCount:              "raceCount",
		source:                 "source", target: "target",
		firstRace: "firstRaceDate", lastRace: "lastRaceDate",
		seasonTuples: true,
	},
}

// Encode writes doc as compact JSON. Equal documents always produce equal bytes.
func Encode(doc Document, f Format) ([]byte, error) {
	fn, ok := names[f.Naming]
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown naming %d", f.Naming))
	}
	e := encoder{f: f, n: fn}

	nodes := make([]any, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes = append(nodes, e.wrap(e.node(n)))
	}
	edges := make([]any, 0, len(doc.Edges))
	for _, ed := range doc.Edges {
		edges = append(edges, e.wrap(e.edge(ed)))
	}
	return json.Marshal(object{{"nodes", nodes}, {"edges", edges}})
}

type encoder struct {
	f Format
	n fieldNames
}

func (e encoder) wrap(o object) any {
	if e.f.Wrap {
		return object{{"data", o}}
	}
	return o
}

func (e encoder) id(v int) any {
	if e.f.StringIDs {
		return strconv.Itoa(v)
	}
	return v
}

func (e encoder) node(n Node) object {
	years := make([]any, 0, len(n.YearsByConstructor))
	for _, cy := range n.YearsByConstructor {
		years = append(years, e.constructorYears(cy))
	}
	mates := make([]any, 0, len(n.TeammatesByConstructor))
	for _, ct := range n.TeammatesByConstructor {
		mates = append(mates, e.constructorTeammates(ct))
	}
	return object{
		{e.n.id, e.id(int(n.ID))},
		{e.n.name, n.Name},
		{e.n.code, n.Code},
		{e.n.forename, n.Forename},
		{e.n.surname, n.Surname},
		{e.n.yearsByConstructor, years},
		{e.n.teammatesByConstructor, mates},
		{e.n.raceCount, n.RaceCount},
	}
}

func (e encoder) edge(ed Edge) object {
	years := make([]any, 0, len(ed.YearsByConstructor))
	for _, cy := range ed.YearsByConstructor {
		years = append(years, e.constructorYears(cy))
	}
	return object{
		{e.n.source, e.id(int(ed.Source))},
		{e.n.target, e.id(int(ed.Target))},
		{e.n.yearsByConstructor, years},
		{e.n.firstRace, raceDate(ed.FirstRace)},
		{e.n.lastRace, raceDate(ed.LastRace)},
	}
}

// raceDate writes a calendar date, or null when the date is unknown.
func raceDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.DateOnly)
}

func (e encoder) constructorYears(cy ConstructorYears) object {
	return object{
		{e.n.constructor, cy.Constructor},
		{e.n.constructorID, int(cy.ConstructorID)},
		{e.n.years, nonNil(cy.Years)},
	}
}

func (e encoder) constructorTeammates(ct ConstructorTeammates) object {
	seasons := make([]any, 0, len(ct.Seasons))
	for _, s := range ct.Seasons {
		ids := nonNil(s.Teammates)
		if e.n.seasonTuples {
			seasons = append(seasons, []any{int(s.Year), ids})
			continue
		}
		seasons = append(seasons, object{{e.n.year, int(s.Year)}, {e.n.teammates, ids}})
	}
	return object{
		{e.n.constructorID, int(ct.ConstructorID)},
		{e.n.years, seasons},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type field struct {
	key   string
	value any
}

// object is a JSON object that keeps its fields in declaration order.
type object []field

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
