package parking

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"parking-reservations/internal/logging"
)

const DefaultSweepInterval = time.Second

// Sweeper releases expired reservations.
type Sweeper interface {
	Sweep(ctx context.Context) []int
}

// ExpiryScheduler runs a sweep on a fixed interval. Each scheduler owns one
// cron runner; Stop may be called any number of times but only the first
// call has an effect.
type ExpiryScheduler struct {
	sweeper  Sweeper
	interval time.Duration
	cron     *cron.Cron

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewExpiryScheduler(sweeper Sweeper, interval time.Duration) *ExpiryScheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &ExpiryScheduler{
		sweeper:  sweeper,
		interval: interval,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Start schedules the sweep. Ticks run with ctx so that spans and logs
// share the caller's resources.
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		_, err = s.cron.AddFunc("@every "+s.interval.String(), func() {
			s.Tick(ctx)
		})
		if err != nil {
			return
		}
		s.cron.Start()
		logging.Info(ctx, "expiry scheduler started", "interval", s.interval.String())
	})
	return err
}

// Tick performs one sweep.
func (s *ExpiryScheduler) Tick(ctx context.Context) []int {
	return s.sweeper.Sweep(ctx)
}

// Stop cancels the schedule and waits for a running sweep to finish.
func (s *ExpiryScheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		logging.Info(context.Background(), "expiry scheduler stopped")
	})
}
