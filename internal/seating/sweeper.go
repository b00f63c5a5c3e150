package seating

import (
	"context"
	"fmt"
	"time"

	"tessera/internal/logger"
)

// Sweeper releases holds past their deadline on a fixed interval. It goes
// through Store.ReleaseExpired, the same reclamation path as explicit
// release, so there is a single code path returning seats to AVAILABLE.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	log      *logger.Logger
}

func NewSweeper(registry *Registry, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{registry: registry, interval: interval, log: log}
}

// Run ticks until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.LogSweep(fmt.Sprintf("running every %s", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.LogSweep("stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep releases every expired hold across all events and returns how many
// holds were reclaimed. Also called on demand by tests.
func (s *Sweeper) Sweep() int {
	total := 0
	for _, store := range s.registry.Stores() {
		released := store.ReleaseExpired()
		total += len(released)
	}
	if total > 0 {
		s.log.LogSweep(fmt.Sprintf("reclaimed %d expired hold(s)", total))
	}
	return total
}
