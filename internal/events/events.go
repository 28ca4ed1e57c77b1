// Package events announces moderation changes to whoever listens (notifications, search indexers).
package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bizdir/internal/config"
	"bizdir/internal/domain"
)

// Moderation event types.
const (
	BusinessSubmitted = "business.submitted"
	BusinessApproved  = "business.approved"
	BusinessRejected  = "business.rejected"
	BusinessDeleted   = "business.deleted"
)

type Event struct {
	Type       string        `json:"type"`
	BusinessID string        `json:"businessId"`
	Slug       string        `json:"slug"`
	OwnerID    string        `json:"ownerId"`
	Status     domain.Status `json:"status,omitempty"`
	ActorID    string        `json:"actorId,omitempty"`
	At         time.Time     `json:"at"`
}

// NewEvent describes b after a moderation-relevant change made by actorID.
func NewEvent(typ string, b *domain.Business, actorID string) Event {
	return Event{
		Type:       typ,
		BusinessID: b.ID,
		Slug:       b.Slug,
		OwnerID:    b.OwnerID,
		Status:     b.Status,
		ActorID:    actorID,
		At:         time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// New picks the backend named by cfg.Type.
func New(cfg config.EventsConfig) (Publisher, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "noop":
		return NewNoopPublisher(), nil
	case "nats":
		return NewNATSPublisher(cfg.NATSURL, cfg.Subject)
	}
	return nil, fmt.Errorf("unknown events type %q", cfg.Type)
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
