package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"paddock/internal/lineup/metrics"
)

// DefaultTopic receives snapshot events unless configured otherwise.
const DefaultTopic = "paddock.snapshots"

// producer is the subset of *kgo.Client the publisher needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher writes events as JSON records keyed by snapshot id, so all
// events for one snapshot land on the same partition.
type KafkaPublisher struct {
	client  producer
	topic   string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*KafkaPublisher)

func WithTopic(topic string) Option {
	return func(p *KafkaPublisher) {
		if topic != "" {
			p.topic = topic
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

func NewKafkaPublisher(client producer, opts ...Option) (*KafkaPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("kafka client is required")
	}
	p := &KafkaPublisher{
		client: client,
		topic:  DefaultTopic,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

var _ Publisher = (*KafkaPublisher)(nil)

// Emit produces synchronously and returns the broker error, if any.
func (p *KafkaPublisher) Emit(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	rec := &kgo.Record{
		Topic:   p.topic,
		Key:     []byte(e.SnapshotID),
		Value:   value,
		Headers: []kgo.RecordHeader{{Key: "type", Value: []byte(e.Type)}},
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		p.metrics.IncrementEvent(string(e.Type), "error")
		p.logger.ErrorContext(ctx, "failed to publish snapshot event",
			"type", string(e.Type),
			"topic", p.topic,
			"error", err,
		)
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	p.metrics.IncrementEvent(string(e.Type), "ok")
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.client.Close()
	return nil
}

// EnsureTopic creates topic if it does not exist yet.
func EnsureTopic(ctx context.Context, admin *kadm.Client, topic string, partitions int32, replicas int16) error {
	resp, err := admin.CreateTopic(ctx, partitions, replicas, nil, topic)
	if err == nil {
		err = resp.Err
	}
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}
