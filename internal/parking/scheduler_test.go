package parking

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep(context.Context) []int {
	c.calls.Add(1)
	return nil
}

func TestSchedulerTickReleasesExpired(t *testing.T) {
	lot, clock := newTestLot(t, &fakeStore{})
	_, err := lot.Reserve(context.Background(), ReservationRequest{
		HolderName: "A", VehicleID: "B1", DurationMinutes: 1, SpotID: 5,
	})
	require.NoError(t, err)

	scheduler := NewExpiryScheduler(lot, time.Second)

	assert.Empty(t, scheduler.Tick(context.Background()))

	clock.Advance(61 * time.Second)
	assert.Equal(t, []int{5}, scheduler.Tick(context.Background()))
	assert.Empty(t, scheduler.Tick(context.Background()))
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	sweeper := &countingSweeper{}
	scheduler := NewExpiryScheduler(sweeper, time.Second)

	require.NoError(t, scheduler.Start(context.Background()))
	require.NoError(t, scheduler.Start(context.Background()), "second start is a no-op")

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)

	scheduler.Stop()
	stopped := sweeper.calls.Load()
	scheduler.Stop()

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, stopped, sweeper.calls.Load(), "no sweeps after stop")
}

func TestSchedulerDefaultInterval(t *testing.T) {
	scheduler := NewExpiryScheduler(&countingSweeper{}, 0)
	assert.Equal(t, DefaultSweepInterval, scheduler.interval)
	scheduler.Stop()
}
