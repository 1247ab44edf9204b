package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionSweeper is the part of the session registry the scheduler drives.
type SessionSweeper interface {
	Sweep(ttl time.Duration) int
	Len() int
}

type Scheduler struct {
	log      *zap.Logger
	sessions SessionSweeper
	ttl      time.Duration
	interval time.Duration
}

func NewScheduler(log *zap.Logger, sessions SessionSweeper, ttl, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		log:      log,
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
	}
}

// Run sweeps idle sessions on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("Starting session sweeper",
		zap.Duration("ttl", s.ttl),
		zap.Duration("interval", s.interval),
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Session sweeper stopped")
			return nil
		case <-ticker.C:
			s.runSweep()
		}
	}
}

func (s *Scheduler) runSweep() {
	removed := s.sessions.Sweep(s.ttl)
	if removed > 0 {
		s.log.Debug("Swept idle sessions",
			zap.Int("removed", removed),
			zap.Int("remaining", s.sessions.Len()),
		)
	}
}
