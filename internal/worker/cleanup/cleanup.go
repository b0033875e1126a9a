// Package cleanup removes sessions that have seen no activity for a while,
// together with the in-process state attached to them.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/wordsession/internal/dependencies/clock"
	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/model"
)

// DefaultIdleTTL is how long a session may go without a change before it is removed
const DefaultIdleTTL = 24 * time.Hour

// SessionStore deletes sessions last updated before a cutoff
type SessionStore interface {
	DeleteIdleSessions(ctx context.Context, before time.Time) ([]model.SessionID, error)
}

// Forgetter drops per-session bookkeeping such as locks
type Forgetter interface {
	Forget(ids ...model.SessionID)
}

// Hubs closes real-time channels
type Hubs interface {
	RemoveHub(id model.SessionID)
	CleanupEmptyHubs() int
}

// Job is the idle-session cleanup job
type Job struct {
	store     SessionStore
	forgetter Forgetter
	hubs      Hubs
	clock     clock.Clock
	metrics   metrics.Recorder
	logger    *slog.Logger
	IdleTTL   time.Duration
}

// NewJob creates a Job with DefaultIdleTTL
func NewJob(store SessionStore, forgetter Forgetter, hubs Hubs, clk clock.Clock, recorder metrics.Recorder, logger *slog.Logger) *Job {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Job{
		store:     store,
		forgetter: forgetter,
		hubs:      hubs,
		clock:     clk,
		metrics:   recorder,
		logger:    logger.With(slog.String("component", "cleanup")),
		IdleTTL:   DefaultIdleTTL,
	}
}

// Run deletes sessions idle for longer than IdleTTL, then closes their hubs
// and any other hub nobody is watching. It is idempotent.
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()
	cutoff := j.clock.Now().Add(-j.IdleTTL)

	deleted, err := j.store.DeleteIdleSessions(ctx, cutoff)
	if err != nil {
		j.logger.Error("idle session cleanup failed",
			slog.String("error", err.Error()),
			slog.Duration("idle_ttl", j.IdleTTL),
		)
		return fmt.Errorf("delete idle sessions: %w", err)
	}

	j.forgetter.Forget(deleted...)
	for _, id := range deleted {
		j.hubs.RemoveHub(id)
	}
	hubsRemoved := j.hubs.CleanupEmptyHubs()
	j.metrics.RecordSessionsExpired(len(deleted))

	j.logger.Info("idle session cleanup completed",
		slog.Int("deleted_count", len(deleted)),
		slog.Int("hubs_removed", hubsRemoved),
		slog.Duration("idle_ttl", j.IdleTTL),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start runs the job every interval until ctx is cancelled
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("cleanup worker started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			// errors are logged by Run
			_ = j.Run(ctx)
		}
	}
}
