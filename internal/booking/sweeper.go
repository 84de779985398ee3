package booking

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Sweeper periodically completes active bookings whose end date has passed.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
}

// NewSweeper creates a sweeper over the engine.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	return &Sweeper{engine: engine, interval: interval}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.WithField("interval", s.interval).Info("Booking sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Booking sweeper stopped")
			return
		case <-ticker.C:
			swept, err := s.engine.SweepCompleted(ctx)
			if err != nil {
				log.WithError(err).Error("Booking sweep failed")
				continue
			}
			if swept > 0 {
				log.WithField("count", swept).Info("Completed expired bookings")
			}
		}
	}
}
