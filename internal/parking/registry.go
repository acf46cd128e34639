package parking

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	StageWidth  = 500
	StageHeight = 300
)

// Registry is an ordered, immutable list of spots. Updates return a new
// Registry and leave the receiver untouched.
type Registry struct {
	spots []Spot
}

func NewRegistry(spots ...Spot) Registry {
	cp := make([]Spot, len(spots))
	copy(cp, spots)
	return Registry{spots: cp}
}

// DefaultRegistry is the 3x2 layout used when no snapshot can be restored.
func DefaultRegistry() Registry {
	layout := []struct {
		class SpotClass
		x, y  int
	}{
		{SpotClassCompact, 50, 50},
		{SpotClassStandard, 200, 50},
		{SpotClassLarge, 350, 50},
		{SpotClassStandard, 50, 150},
		{SpotClassCompact, 200, 150},
		{SpotClassLarge, 350, 150},
	}

	spots := make([]Spot, len(layout))
	for i, l := range layout {
		spots[i] = NewSpot(i+1, l.class, Geometry{X: l.x, Y: l.y, Width: 100, Height: 70})
	}
	return Registry{spots: spots}
}

func (r Registry) Len() int {
	return len(r.spots)
}

// List returns a deep copy of the spots in display order.
func (r Registry) List() []Spot {
	out := make([]Spot, len(r.spots))
	for i, spot := range r.spots {
		out[i] = spot.Clone()
	}
	return out
}

func (r Registry) Find(id int) (Spot, bool) {
	for _, spot := range r.spots {
		if spot.ID == id {
			return spot.Clone(), true
		}
	}
	return Spot{}, false
}

// Replace applies update to the spot with the given id. An unknown id is a
// no-op and returns r itself.
func (r Registry) Replace(id int, update func(Spot) Spot) Registry {
	for i, spot := range r.spots {
		if spot.ID != id {
			continue
		}
		next := make([]Spot, len(r.spots))
		copy(next, r.spots)
		updated := update(spot.Clone())
		updated.ID = id
		next[i] = updated
		return Registry{spots: next}
	}
	return r
}

// Occupied counts spots that currently hold a reservation.
func (r Registry) Occupied() int {
	n := 0
	for _, spot := range r.spots {
		if spot.Occupied() {
			n++
		}
	}
	return n
}

func (r Registry) MarshalJSON() ([]byte, error) {
	if r.spots == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.spots)
}

var errDuplicateSpot = errors.New("duplicate spot id")

func (r *Registry) UnmarshalJSON(data []byte) error {
	var spots []Spot
	if err := json.Unmarshal(data, &spots); err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(spots))
	for _, spot := range spots {
		if _, ok := seen[spot.ID]; ok {
			return fmt.Errorf("%w: %d", errDuplicateSpot, spot.ID)
		}
		seen[spot.ID] = struct{}{}
	}
	r.spots = spots
	return nil
}
