package events

import (
	"context"
	"log/slog"
)

// NoopPublisher only logs. Used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{logger: slog.Default().With("component", "noop_publisher")}
}

func (p *NoopPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.DebugContext(ctx, "event (noop)", "type", e.Type, "business_id", e.BusinessID, "status", e.Status)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
