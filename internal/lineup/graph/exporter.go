package graph

import (
	"sort"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/snapshot"
	"paddock/internal/lineup/store"
)

// Export builds the graph for the drivers active within r.
func Export(snap *snapshot.Snapshot, r YearRange) Document {
	return ExportFiltered(snap, Filter{Years: r})
}

// ExportFiltered builds the graph for f. A driver is a candidate when it has
// at least one pairing, raced within f.Years and meets f.MinRaceCount. An edge
// is kept only when both endpoints are candidates, and a candidate becomes a
// node only when at least one kept edge touches it.
func ExportFiltered(snap *snapshot.Snapshot, f Filter) Document {
	doc := Document{Nodes: []Node{}, Edges: []Edge{}}
	if snap == nil {
		return doc
	}

	candidates := models.IDSet[models.DriverID]{}
	for _, d := range snap.Drivers() {
		if d.PairCount() == 0 || !d.ActiveWithin(f.Years.Min, f.Years.Max) || d.RaceCount() < f.MinRaceCount {
			continue
		}
		candidates.Add(d.ID())
	}

	linked := models.IDSet[models.DriverID]{}
	for _, p := range snap.Pairs() {
		key := p.Key()
		if !candidates.Has(key.Low) || !candidates.Has(key.High) {
			continue
		}
		linked.Add(key.Low)
		linked.Add(key.High)
		doc.Edges = append(doc.Edges, Edge{
			Source:             key.Low,
			Target:             key.High,
			YearsByConstructor: constructorYears(snap.Store(), p.YearsByConstructor()),
			FirstRace:          p.FirstRaceDate(),
			LastRace:           p.LastRaceDate(),
		})
	}

	for _, d := range snap.Drivers() {
		if linked.Has(d.ID()) {
			doc.Nodes = append(doc.Nodes, newNode(snap.Store(), d))
		}
	}
	sort.SliceStable(doc.Nodes, func(i, j int) bool {
		if doc.Nodes[i].firstYear != doc.Nodes[j].firstYear {
			return doc.Nodes[i].firstYear > doc.Nodes[j].firstYear
		}
		return doc.Nodes[i].ID < doc.Nodes[j].ID
	})
	return doc
}

func newNode(st *store.Store, d *snapshot.DriverState) Node {
	rec := d.Record()
	first, _ := d.FirstYear()
	return Node{
		ID:                     rec.ID,
		Name:                   rec.DisplayName(),
		Code:                   rec.Code,
		Forename:               rec.Forename,
		Surname:                rec.Surname,
		YearsByConstructor:     constructorYears(st, d.YearsByConstructor()),
		TeammatesByConstructor: teammatesByConstructor(d.TeammatesByConstructor()),
		RaceCount:              d.RaceCount(),
		firstYear:              first,
	}
}

// constructorYears keeps the snapshot's earliest-year ordering.
func constructorYears(st *store.Store, in []snapshot.ConstructorYears) []ConstructorYears {
	out := make([]ConstructorYears, 0, len(in))
	for _, cy := range in {
		entry := ConstructorYears{ConstructorID: cy.ConstructorID, Years: cy.Years}
		if c, ok := st.Constructor(cy.ConstructorID); ok {
			entry.Constructor = c.Name
		}
		out = append(out, entry)
	}
	return out
}

func teammatesByConstructor(in []snapshot.ConstructorTeammates) []ConstructorTeammates {
	sorted := append([]snapshot.ConstructorTeammates(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := sorted[i].LatestYear(), sorted[j].LatestYear()
		if li != lj {
			return li > lj
		}
		ci, cj := sorted[i].TeammateCount(), sorted[j].TeammateCount()
		if ci != cj {
			return ci > cj
		}
		return sorted[i].ConstructorID < sorted[j].ConstructorID
	})

	out := make([]ConstructorTeammates, 0, len(sorted))
	for _, ct := range sorted {
		entry := ConstructorTeammates{ConstructorID: ct.ConstructorID, Seasons: make([]Season, 0, len(ct.Seasons))}
		for _, s := range ct.Seasons {
			entry.Seasons = append(entry.Seasons, Season{Year: s.Year, Teammates: s.Teammates})
		}
		out = append(out, entry)
	}
	return out
}
