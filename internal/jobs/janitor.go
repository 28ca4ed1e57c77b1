// Package jobs runs the background housekeeping. Nothing here touches listings.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"bizdir/internal/repos"
)

// SessionJanitor deletes sessions idle for longer than the configured TTL.
type SessionJanitor struct {
	store     repos.Store
	idleTTL   time.Duration
	every     time.Duration
	scheduler *gocron.Scheduler
}

func NewSessionJanitor(store repos.Store, idleTTL, every time.Duration) *SessionJanitor {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &SessionJanitor{store: store, idleTTL: idleTTL, every: every, scheduler: s}
}

// Sweep runs one purge pass and reports how many sessions were removed.
func (j *SessionJanitor) Sweep(ctx context.Context) (int64, error) {
	cutoff := repos.Now().Add(-j.idleTTL)
	n, err := j.store.Users().PurgeSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("sessions purged", "count", n, "cutoff", cutoff.UTC().Format(time.RFC3339))
	}
	return n, nil
}

func (j *SessionJanitor) Start() error {
	_, err := j.scheduler.Every(j.every).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			slog.Error("session sweep failed", "err", err)
		}
	})
	if err != nil {
		return err
	}
	j.scheduler.StartAsync()
	slog.Info("session janitor started", "every", j.every.String(), "idle_ttl", j.idleTTL.String())
	return nil
}

func (j *SessionJanitor) Stop() { j.scheduler.Stop() }
