package parking

import "time"

// IsAvailable reports whether spot can be reserved at now. A reservation
// that has elapsed but not yet been swept does not block the spot.
func IsAvailable(spot Spot, now time.Time) bool {
	if spot.Reservation == nil {
		return true
	}
	return spot.Reservation.Expired(now)
}

func AvailableSpots(reg Registry, now time.Time) []Spot {
	var available []Spot
	for _, spot := range reg.spots {
		if IsAvailable(spot, now) {
			available = append(available, spot.Clone())
		}
	}
	return available
}
