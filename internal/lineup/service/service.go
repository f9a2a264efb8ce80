// Package service owns the published lineup snapshot: it rebuilds it from the
// record source, swaps it in atomically and serves graph documents from it.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"paddock/internal/lineup/cache"
	"paddock/internal/lineup/events"
	"paddock/internal/lineup/graph"
	"paddock/internal/lineup/metrics"
	"paddock/internal/lineup/models"
	"paddock/internal/lineup/snapshot"
	"paddock/internal/lineup/source"
	dErrors "paddock/pkg/domain-errors"
	"paddock/pkg/platform/sentinel"
)

var tracer = otel.Tracer("paddock/lineup/service")

// Source reads the raw record streams.
type Source interface {
	Drivers(ctx context.Context) ([]models.Driver, error)
	Constructors(ctx context.Context) ([]models.Constructor, error)
	Races(ctx context.Context) ([]models.Race, error)
	Results(ctx context.Context) ([]models.Result, error)
}

// Cache stores encoded graph documents. Get returns sentinel.ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, key cache.Key) ([]byte, error)
	Set(ctx context.Context, key cache.Key, doc []byte) error
}

// EventPublisher announces snapshot lifecycle changes.
type EventPublisher interface {
	Emit(ctx context.Context, e events.Event) error
}

type Service struct {
	source    Source
	cache     Cache
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	rebuildMu sync.Mutex
	holder    snapshot.Holder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(src Source, opts ...Option) (*Service, error) {
	if src == nil {
		return nil, fmt.Errorf("record source is required")
	}
	svc := &Service{
		source: src,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if svc.cache == nil {
		svc.cache = cache.NewMemory()
	}
	return svc, nil
}

// Current returns the published snapshot, or nil before the first successful
// rebuild.
func (s *Service) Current() *snapshot.Snapshot {
	return s.holder.Load()
}

// Rebuild loads every record, builds a fresh snapshot and publishes it.
// Concurrent calls run one after another. On failure the previous snapshot
// stays published.
func (s *Service) Rebuild(ctx context.Context) (*snapshot.Snapshot, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	ctx, span := tracer.Start(ctx, "lineup.Rebuild")
	defer span.End()

	start := s.now()
	st, err := source.LoadStore(ctx, s.source)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load records")
		}
		return nil, s.rebuildFailed(ctx, err)
	}

	snap, err := snapshot.Build(ctx, st, snapshot.WithLogger(s.logger), snapshot.WithClock(s.now))
	if err != nil {
		return nil, s.rebuildFailed(ctx, fmt.Errorf("build snapshot: %w", err))
	}

	previous := s.holder.Publish(snap)
	stats := snap.Stats()
	s.metrics.ObserveBuild(s.now().Sub(start))
	s.metrics.RecordPublished(stats.Drivers, stats.Pairs, stats.Anomalies)
	span.SetAttributes(attribute.String("snapshot.id", snap.ID().String()))

	attrs := []any{
		"snapshot_id", snap.ID(),
		"drivers", stats.Drivers,
		"pairs", stats.Pairs,
		"anomalies", stats.Anomalies,
	}
	if previous != nil {
		attrs = append(attrs, "previous_snapshot_id", previous.ID())
	}
	s.logger.InfoContext(ctx, "snapshot published", attrs...)

	s.emit(ctx, events.Published(snap))
	return snap, nil
}

func (s *Service) rebuildFailed(ctx context.Context, err error) error {
	s.metrics.IncrementRebuildFailures()
	current := s.holder.Load()
	attrs := []any{"error", err}
	if current != nil {
		attrs = append(attrs, "serving_snapshot_id", current.ID())
	}
	s.logger.ErrorContext(ctx, "snapshot rebuild failed, keeping previous snapshot", attrs...)
	s.emit(ctx, events.Failed(current, s.now(), err))
	return err
}

func (s *Service) emit(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit snapshot event",
			"type", string(e.Type),
			"error", err,
		)
	}
}

// GraphQuery selects the year range, driver start threshold and wire format
// of a graph document.
type GraphQuery struct {
	Range        graph.YearRange
	MinRaceCount int
	Format       graph.Format
}

func (q GraphQuery) filter() graph.Filter {
	return graph.Filter{Years: q.Range, MinRaceCount: q.MinRaceCount}
}

// Graph returns the encoded graph document for q, served from the cache when
// the current snapshot already produced it.
func (s *Service) Graph(ctx context.Context, q GraphQuery) ([]byte, error) {
	if err := q.filter().Validate(); err != nil {
		return nil, err
	}
	snap, err := s.published()
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "lineup.Graph")
	defer span.End()
	span.SetAttributes(
		attribute.Int("graph.min_year", int(q.Range.Min)),
		attribute.Int("graph.max_year", int(q.Range.Max)),
		attribute.Int("graph.min_race_count", q.MinRaceCount),
		attribute.String("graph.format", q.Format.String()),
	)

	key := cache.Key{
		SnapshotID:   snap.ID(),
		MinYear:      q.Range.Min,
		MaxYear:      q.Range.Max,
		MinRaceCount: q.MinRaceCount,
		Format:       q.Format.String(),
	}
	doc, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.IncrementCacheHit()
		span.SetAttributes(attribute.Bool("graph.cache_hit", true))
		return doc, nil
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncrementCacheMiss()
	default:
		s.metrics.IncrementCacheError()
		s.logger.WarnContext(ctx, "graph cache read failed", "key", key.String(), "error", err)
	}

	start := s.now()
	doc, err = graph.Encode(graph.ExportFiltered(snap, q.filter()), q.Format)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode graph")
	}
	s.metrics.ObserveExport(q.Format.String(), s.now().Sub(start))

	if err := s.cache.Set(ctx, key, doc); err != nil {
		s.logger.WarnContext(ctx, "graph cache write failed", "key", key.String(), "error", err)
	}
	return doc, nil
}

// PathQuery asks for the shortest teammate chain between two drivers within
// the graph GraphQuery would select.
type PathQuery struct {
	From         models.DriverID
	To           models.DriverID
	Range        graph.YearRange
	MinRaceCount int
}

// Path returns the shortest teammate chain from q.From to q.To.
func (s *Service) Path(ctx context.Context, q PathQuery) (graph.Path, error) {
	f := graph.Filter{Years: q.Range, MinRaceCount: q.MinRaceCount}
	if err := f.Validate(); err != nil {
		return graph.Path{}, err
	}
	snap, err := s.published()
	if err != nil {
		return graph.Path{}, err
	}

	_, span := tracer.Start(ctx, "lineup.Path")
	defer span.End()
	span.SetAttributes(
		attribute.Int("path.from", int(q.From)),
		attribute.Int("path.to", int(q.To)),
	)

	path, err := graph.ShortestPath(snap, q.From, q.To, f)
	if err != nil {
		return graph.Path{}, err
	}
	span.SetAttributes(attribute.Int("path.hops", path.Hops))
	return path, nil
}

// Styles returns the constructor legend for the published snapshot.
func (s *Service) Styles(ctx context.Context) ([]graph.Style, error) {
	snap, err := s.published()
	if err != nil {
		return nil, err
	}
	return graph.BuildStyles(snap.Store()), nil
}

func (s *Service) published() (*snapshot.Snapshot, error) {
	snap := s.holder.Load()
	if snap == nil {
		return nil, dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeUnavailable, "no snapshot has been built yet")
	}
	return snap, nil
}
