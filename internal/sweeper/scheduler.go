package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sbrenamer/internal/util/logger/sl"
)

const (
	DefaultDelay    = 10 * time.Second
	DefaultInterval = 24 * time.Hour
)

// Scheduler runs the current sweeper once after a delay and then
// periodically. The sweeper can be replaced while the loop runs.
type Scheduler struct {
	mu      sync.Mutex
	sweeper *Sweeper
	log     *slog.Logger
}

func NewScheduler(s *Sweeper, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		sweeper: s,
		log:     log.With(slog.String("component", "sweeper")),
	}
}

func (s *Scheduler) Sweeper() *Sweeper {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweeper
}

// SweepNow runs the current sweeper synchronously.
func (s *Scheduler) SweepNow() (Report, error) {
	sw := s.Sweeper()

	report, err := sw.Sweep()
	if err != nil {
		s.log.Error("sweep failed", sl.Err(err))
	}
	return report, err
}

// Reconfigure swaps in sw and sweeps with it right away.
func (s *Scheduler) Reconfigure(sw *Sweeper) (Report, error) {
	s.mu.Lock()
	s.sweeper = sw
	s.mu.Unlock()

	s.log.Info("Sweeper reconfigured", slog.String("dir", sw.Dir()), slog.Int("days", sw.MaxDays()))

	return s.SweepNow()
}

// Run blocks until ctx is done. interval 0 sweeps once.
func (s *Scheduler) Run(ctx context.Context, delay, interval time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}
	s.SweepNow()

	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepNow()
		}
	}
}
