// Package snapshot turns a loaded record store into the teammate aggregate:
// results are linked onto races and drivers, then every race is folded into
// canonical driver pairs and per-driver, per-constructor history.
//
// A Snapshot is built once and never mutated afterwards. All mutation happens
// inside Build through unexported methods; other packages only see read
// accessors, so a published snapshot can be shared by concurrent readers
// without locking.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"paddock/internal/lineup/models"
	"paddock/internal/lineup/store"
)

var tracer = otel.Tracer("paddock/lineup/snapshot")

// Snapshot is the linked, aggregated, read-only state of one ingestion run.
type Snapshot struct {
	id      uuid.UUID
	builtAt time.Time
	store   *store.Store

	drivers      map[models.DriverID]*DriverState
	constructors map[models.ConstructorID]*ConstructorState
	races        map[models.RaceID]*RaceState
	pairs        map[models.PairKey]*DriverPair
	anomalies    []Anomaly
}

type buildOptions struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

type Option func(*buildOptions)

func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the build timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *buildOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides snapshot id generation.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(o *buildOptions) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// Build links and aggregates st into a new Snapshot. A result referencing an
// unknown entity fails the whole build with *ReferentialIntegrityError.
func Build(ctx context.Context, st *store.Store, opts ...Option) (*Snapshot, error) {
	if st == nil {
		return nil, fmt.Errorf("record store is required")
	}
	o := buildOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := tracer.Start(ctx, "snapshot.Build")
	defer span.End()

	s := newSnapshot(st, o.newID(), o.now())

	if err := traced(ctx, "snapshot.link", func(context.Context) error { return link(s, st) }); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "link failed")
		return nil, err
	}

	_ = traced(ctx, "snapshot.aggregate", func(ctx context.Context) error {
		agg := &aggregator{snap: s, store: st, logger: o.logger}
		agg.run(ctx)
		return nil
	})

	span.SetAttributes(
		attribute.String("snapshot.id", s.id.String()),
		attribute.Int("snapshot.drivers", len(s.drivers)),
		attribute.Int("snapshot.pairs", len(s.pairs)),
		attribute.Int("snapshot.anomalies", len(s.anomalies)),
	)
	o.logger.DebugContext(ctx, "snapshot built",
		"snapshot_id", s.id,
		"drivers", len(s.drivers),
		"pairs", len(s.pairs),
		"anomalies", len(s.anomalies),
	)
	return s, nil
}

func traced(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func newSnapshot(st *store.Store, id uuid.UUID, builtAt time.Time) *Snapshot {
	s := &Snapshot{
		id:           id,
		builtAt:      builtAt,
		store:        st,
		drivers:      make(map[models.DriverID]*DriverState),
		constructors: make(map[models.ConstructorID]*ConstructorState),
		races:        make(map[models.RaceID]*RaceState),
		pairs:        make(map[models.PairKey]*DriverPair),
	}
	for _, id := range st.DriverIDs() {
		d, _ := st.Driver(id)
		s.drivers[id] = newDriverState(d)
	}
	for _, id := range st.ConstructorIDs() {
		c, _ := st.Constructor(id)
		s.constructors[id] = newConstructorState(c)
	}
	for _, id := range st.RaceIDs() {
		r, _ := st.Race(id)
		s.races[id] = newRaceState(r)
	}
	return s
}

func (s *Snapshot) ID() uuid.UUID        { return s.id }
func (s *Snapshot) BuiltAt() time.Time   { return s.builtAt }
func (s *Snapshot) Store() *store.Store  { return s.store }
func (s *Snapshot) PairCount() int       { return len(s.pairs) }
func (s *Snapshot) Anomalies() []Anomaly { return slices.Clone(s.anomalies) }

func (s *Snapshot) Driver(id models.DriverID) (*DriverState, bool) {
	d, ok := s.drivers[id]
	return d, ok
}

// Drivers returns every driver, ascending by id.
func (s *Snapshot) Drivers() []*DriverState {
	out := make([]*DriverState, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rec.ID < out[j].rec.ID })
	return out
}

func (s *Snapshot) Constructor(id models.ConstructorID) (*ConstructorState, bool) {
	c, ok := s.constructors[id]
	return c, ok
}

// Constructors returns every constructor, ascending by id.
func (s *Snapshot) Constructors() []*ConstructorState {
	out := make([]*ConstructorState, 0, len(s.constructors))
	for _, c := range s.constructors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rec.ID < out[j].rec.ID })
	return out
}

func (s *Snapshot) Race(id models.RaceID) (*RaceState, bool) {
	r, ok := s.races[id]
	return r, ok
}

func (s *Snapshot) Pair(key models.PairKey) (*DriverPair, bool) {
	p, ok := s.pairs[key]
	return p, ok
}

// Pairs returns every pair ordered by key.
func (s *Snapshot) Pairs() []*DriverPair {
	out := make([]*DriverPair, 0, len(s.pairs))
	for _, p := range s.pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key.Less(out[j].key) })
	return out
}

// Stats summarizes a snapshot for status reporting.
type Stats struct {
	Drivers      int `json:"drivers"`
	Constructors int `json:"constructors"`
	Races        int `json:"races"`
	Results      int `json:"results"`
	Pairs        int `json:"pairs"`
	Anomalies    int `json:"anomalies"`
}

func (s *Snapshot) Stats() Stats {
	c := s.store.Counts()
	return Stats{
		Drivers:      c.Drivers,
		Constructors: c.Constructors,
		Races:        c.Races,
		Results:      c.Results,
		Pairs:        len(s.pairs),
		Anomalies:    len(s.anomalies),
	}
}
