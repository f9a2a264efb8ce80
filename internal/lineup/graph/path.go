package graph

import (
	"fmt"
	"slices"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/snapshot"
	dErrors "paddock/pkg/domain-errors"
)

// Path is the shortest chain of teammates between two drivers. Links[i]
// joins Drivers[i] and Drivers[i+1].
type Path struct {
	Drivers []PathDriver `json:"drivers"`
	Links   []PathLink   `json:"links"`
	Hops    int          `json:"hops"`
}

type PathDriver struct {
	ID   models.DriverID `json:"id"`
	Name string          `json:"name"`
	Code string          `json:"code"`
}

type PathLink struct {
	Source       models.DriverID   `json:"source"`
	Target       models.DriverID   `json:"target"`
	Constructors []PathConstructor `json:"constructors"`
}

type PathConstructor struct {
	ConstructorID models.ConstructorID `json:"constructor_id"`
	Constructor   string               `json:"constructor"`
	Years         []models.Year        `json:"years"`
}

// ShortestPath runs a breadth-first search over the graph ExportFiltered
// would produce for f. Neighbours are visited in ascending id order, so among
// equally short paths the lexicographically smallest one wins.
func ShortestPath(snap *snapshot.Snapshot, from, to models.DriverID, f Filter) (Path, error) {
	doc := ExportFiltered(snap, f)

	nodes := make(map[models.DriverID]Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes[n.ID] = n
	}
	for _, id := range []models.DriverID{from, to} {
		if _, ok := nodes[id]; !ok {
			return Path{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("driver %d is not in the graph for this filter", id))
		}
	}

	adjacent := make(map[models.DriverID][]models.DriverID, len(doc.Nodes))
	edges := make(map[models.PairKey]Edge, len(doc.Edges))
	for _, e := range doc.Edges {
		adjacent[e.Source] = append(adjacent[e.Source], e.Target)
		adjacent[e.Target] = append(adjacent[e.Target], e.Source)
		edges[models.PairKey{Low: e.Source, High: e.Target}] = e
	}
	for _, ns := range adjacent {
		slices.Sort(ns)
	}

	prev := map[models.DriverID]models.DriverID{from: from}
	queue := []models.DriverID{from}
	for len(queue) > 0 && !hasKey(prev, to) {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[cur] {
			if hasKey(prev, next) {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	if !hasKey(prev, to) {
		return Path{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no teammate path between drivers %d and %d", from, to))
	}

	chain := []models.DriverID{to}
	for cur := to; cur != from; {
		cur = prev[cur]
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	path := Path{
		Drivers: make([]PathDriver, 0, len(chain)),
		Links:   make([]PathLink, 0, len(chain)-1),
		Hops:    len(chain) - 1,
	}
	for i, id := range chain {
		n := nodes[id]
		path.Drivers = append(path.Drivers, PathDriver{ID: n.ID, Name: n.Name, Code: n.Code})
		if i == 0 {
			continue
		}
		key, _ := models.NewPairKey(chain[i-1], id)
		link := PathLink{Source: chain[i-1], Target: id, Constructors: []PathConstructor{}}
		for _, cy := range edges[key].YearsByConstructor {
			link.Constructors = append(link.Constructors, PathConstructor{
				ConstructorID: cy.ConstructorID,
				Constructor:   cy.Constructor,
				Years:         cy.Years,
			})
		}
		path.Links = append(path.Links, link)
	}
	return path, nil
}

func hasKey[K comparable, V any](m map[K]V, k K) bool {
	_, ok := m[k]
	return ok
}
