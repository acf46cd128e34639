package parking

import (
	"fmt"
	"time"
)

const (
	StatusAvailable = "Available"
	StatusOccupied  = "Occupied"
	expiredLabel    = "Expired"
)

type SpotDetails struct {
	ID            int          `json:"id"`
	Class         SpotClass    `json:"class"`
	Status        string       `json:"status"`
	TimeRemaining string       `json:"time_remaining"`
	Reservation   *Reservation `json:"reservation,omitempty"`
}

// Details describes spot as seen at now. A reservation that has elapsed is
// reported as available even before the sweep clears it.
func Details(spot Spot, now time.Time) SpotDetails {
	d := SpotDetails{
		ID:            spot.ID,
		Class:         spot.Class,
		Status:        StatusAvailable,
		TimeRemaining: expiredLabel,
	}
	if spot.Reservation == nil || spot.Reservation.Expired(now) {
		return d
	}

	d.Status = StatusOccupied
	d.TimeRemaining = FormatRemaining(spot.Reservation.EndTime.Sub(now))
	r := *spot.Reservation
	d.Reservation = &r
	return d
}

// FormatRemaining renders a positive duration as "<minutes>m <seconds>s",
// truncating partial seconds.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return expiredLabel
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
