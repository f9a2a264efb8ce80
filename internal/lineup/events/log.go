package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to the log. It is used when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

var _ Publisher = (*LogPublisher)(nil)

func (p *LogPublisher) Emit(ctx context.Context, e Event) error {
	attrs := []any{"type", string(e.Type), "snapshot_id", e.SnapshotID}
	if e.Stats != nil {
		attrs = append(attrs, "drivers", e.Stats.Drivers, "pairs", e.Stats.Pairs, "anomalies", e.Stats.Anomalies)
	}
	if e.Error != "" {
		attrs = append(attrs, "error", e.Error)
	}
	p.logger.InfoContext(ctx, "snapshot event", attrs...)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
