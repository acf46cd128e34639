package parking

import (
	"context"
	"errors"
	"sync"
	"time"

	"parking-reservations/internal/logging"
)

// Lot owns the live registry. Every mutation runs under one lock and is
// followed by a best-effort save of the new snapshot.
type Lot struct {
	mu        sync.RWMutex
	registry  Registry
	store     StateStore
	now       func() time.Time
	listeners []func(Registry)

	// notifyMu is taken before mu is released so listeners see mutations
	// in the order they were applied.
	notifyMu sync.Mutex
}

type LotOption func(*Lot)

func WithClock(now func() time.Time) LotOption {
	return func(l *Lot) {
		l.now = now
	}
}

// NewLot restores the registry from store, falling back to the default
// layout when nothing usable is saved.
func NewLot(ctx context.Context, store StateStore, opts ...LotOption) *Lot {
	l := &Lot{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.registry = l.restore(ctx)
	return l
}

func (l *Lot) restore(ctx context.Context) Registry {
	if l.store == nil {
		return DefaultRegistry()
	}

	data, err := l.store.LoadState(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoState) {
			logging.Warn(ctx, "failed to load saved spots, using defaults", "error", err)
		}
		return DefaultRegistry()
	}

	reg, err := DecodeSnapshot(data)
	if err != nil {
		logging.Warn(ctx, "discarding unreadable spot snapshot", "error", err)
		return DefaultRegistry()
	}

	logging.Info(ctx, "restored spots from storage", "spots", reg.Len(), "occupied", reg.Occupied())
	return reg
}

// OnChange registers fn to receive the registry after every mutation.
// fn may read the lot but must not mutate it.
func (l *Lot) OnChange(fn func(Registry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

func (l *Lot) Now() time.Time {
	return l.now()
}

func (l *Lot) Registry() Registry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.registry
}

func (l *Lot) Spots() []Spot {
	return l.Registry().List()
}

func (l *Lot) Spot(id int) (Spot, bool) {
	return l.Registry().Find(id)
}

func (l *Lot) Available() []Spot {
	return AvailableSpots(l.Registry(), l.now())
}

func (l *Lot) Search(query string, field SearchField) []Spot {
	return Search(l.Registry(), query, field)
}

func (l *Lot) Details(id int) (SpotDetails, error) {
	spot, ok := l.Spot(id)
	if !ok {
		return SpotDetails{}, ErrSpotNotFound
	}
	return Details(spot, l.now()), nil
}

func (l *Lot) Grid() Grid {
	return BuildGrid(l.Registry())
}

func (l *Lot) Reserve(ctx context.Context, req ReservationRequest) (Confirmation, error) {
	l.mu.Lock()
	next, confirmation, err := Reserve(l.registry, req, l.now())
	if err != nil {
		l.mu.Unlock()
		return Confirmation{}, err
	}
	l.registry = next
	l.persist(ctx, next)
	l.notify(next)

	logging.Info(ctx, "spot reserved",
		"spot_id", confirmation.SpotID,
		"duration_minutes", confirmation.Reservation.DurationMinutes,
		"end_time", confirmation.Reservation.EndTime)

	return confirmation, nil
}

// Sweep releases expired reservations and returns the freed spot ids.
// Nothing is saved when no spot changed.
func (l *Lot) Sweep(ctx context.Context) []int {
	l.mu.Lock()
	next, released := Sweep(l.registry, l.now())
	if len(released) == 0 {
		l.mu.Unlock()
		return nil
	}
	l.registry = next
	l.persist(ctx, next)
	l.notify(next)

	logging.Info(ctx, "released expired reservations", "spot_ids", released)

	return released
}

// persist must be called with mu held.
func (l *Lot) persist(ctx context.Context, reg Registry) {
	if l.store == nil {
		return
	}
	data, err := EncodeSnapshot(reg)
	if err != nil {
		logging.Error(ctx, "failed to encode spot snapshot", "error", err)
		return
	}
	if err := l.store.SaveState(ctx, data); err != nil {
		logging.Warn(ctx, "failed to save spot snapshot", "error", err)
	}
}

// notify must be called with mu held and releases it. Listeners run
// outside mu, so they may read the lot, but one at a time and in the
// order the mutations were applied.
func (l *Lot) notify(reg Registry) {
	listeners := l.listeners
	l.notifyMu.Lock()
	l.mu.Unlock()
	defer l.notifyMu.Unlock()

	for _, fn := range listeners {
		fn(reg)
	}
}
