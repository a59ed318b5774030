package session

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically ends sessions that have been idle too long.
type Reaper struct {
	manager  *Manager
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func NewReaper(manager *Manager, ttl, interval time.Duration, logger *slog.Logger) *Reaper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Reaper{
		manager:  manager,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	r.logger.Info("session reaper started", "interval", r.interval, "ttl", r.ttl)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("session reaper stopped")
			return nil
		case <-ticker.C:
			r.Reap()
		}
	}
}

// Reap ends every session idle for longer than the ttl and returns how
// many it removed.
func (r *Reaper) Reap() int {
	idle := r.manager.Idle(r.manager.now().Add(-r.ttl))
	if len(idle) == 0 {
		r.logger.Debug("no idle sessions")
		return 0
	}

	n := 0
	for _, id := range idle {
		if err := r.manager.End(id); err != nil {
			// Ended concurrently by its owner.
			continue
		}
		r.logger.Info("idle session evicted", "session", id)
		n++
	}
	return n
}
