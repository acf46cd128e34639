package parking

import "time"

// Sweep clears every reservation whose end time is at or before now. It
// returns the ids it released; when none were released the returned
// registry is reg itself.
func Sweep(reg Registry, now time.Time) (Registry, []int) {
	var released []int
	for _, spot := range reg.spots {
		if spot.Reservation != nil && spot.Reservation.Expired(now) {
			released = append(released, spot.ID)
		}
	}
	if len(released) == 0 {
		return reg, nil
	}

	next := make([]Spot, len(reg.spots))
	for i, spot := range reg.spots {
		if spot.Reservation != nil && spot.Reservation.Expired(now) {
			spot = spot.Release()
		}
		next[i] = spot
	}
	return Registry{spots: next}, released
}
