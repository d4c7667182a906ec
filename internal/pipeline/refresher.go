package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-feed-service/internal/loader"
)

// Refreshable is anything that can begin a fresh load.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Refresher triggers a refresh every interval until its context ends.
type Refresher struct {
	target   Refreshable
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewRefresher creates a Refresher. A nil clock uses real time.
func NewRefresher(target Refreshable, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Refresher{target: target, interval: interval, clock: clock, logger: logger}
}

// Run blocks until ctx is cancelled. A non-positive interval returns at once.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	r.logger.Info("periodic refresh started", "interval", r.interval)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("periodic refresh stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	err := r.target.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, loader.ErrLoadInProgress):
		r.logger.Debug("refresh skipped, load in progress")
	case errors.Is(err, ErrOffline):
		r.logger.Debug("refresh skipped, offline")
	default:
		r.logger.Warn("refresh failed", "error", err)
	}
}
