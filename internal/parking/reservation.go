package parking

import (
	"slices"
	"strings"
	"time"
)

var allowedDurations = []int{1, 15, 30, 45, 60, 90, 120, 180, 240, 300, 360}

// AllowedDurations returns the reservation lengths, in minutes, a client
// may choose from.
func AllowedDurations() []int {
	return slices.Clone(allowedDurations)
}

func IsAllowedDuration(minutes int) bool {
	return slices.Contains(allowedDurations, minutes)
}

type ReservationRequest struct {
	HolderName      string `json:"holder_name"`
	VehicleID       string `json:"vehicle_id"`
	DurationMinutes int    `json:"duration_minutes"`
	SpotID          int    `json:"spot_id"`
}

// Validate checks that every field is present. It reports all missing
// fields at once.
func (req ReservationRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(req.HolderName) == "" {
		missing = append(missing, "holder_name")
	}
	if strings.TrimSpace(req.VehicleID) == "" {
		missing = append(missing, "vehicle_id")
	}
	if req.DurationMinutes == 0 {
		missing = append(missing, "duration_minutes")
	}
	if req.SpotID == 0 {
		missing = append(missing, "spot_id")
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}
	return nil
}

// Confirmation is the snapshot shown to the holder after a reservation
// is applied.
type Confirmation struct {
	SpotID      int         `json:"spot_id"`
	SpotClass   SpotClass   `json:"spot_class"`
	Reservation Reservation `json:"reservation"`
}

// Reserve validates req and attaches a new reservation to the requested
// spot. On error the returned registry is reg unchanged.
func Reserve(reg Registry, req ReservationRequest, now time.Time) (Registry, Confirmation, error) {
	if err := req.Validate(); err != nil {
		return reg, Confirmation{}, err
	}
	if !IsAllowedDuration(req.DurationMinutes) {
		return reg, Confirmation{}, ErrInvalidDuration
	}

	spot, ok := reg.Find(req.SpotID)
	if !ok {
		return reg, Confirmation{}, ErrSpotNotFound
	}
	if !IsAvailable(spot, now) {
		return reg, Confirmation{}, ErrSpotUnavailable
	}

	reservation := Reservation{
		HolderName:      strings.TrimSpace(req.HolderName),
		VehicleID:       strings.TrimSpace(req.VehicleID),
		StartTime:       now,
		EndTime:         now.Add(time.Duration(req.DurationMinutes) * time.Minute),
		DurationMinutes: req.DurationMinutes,
	}

	next := reg.Replace(req.SpotID, func(s Spot) Spot {
		return s.Reserve(reservation)
	})

	return next, Confirmation{
		SpotID:      spot.ID,
		SpotClass:   spot.Class,
		Reservation: reservation,
	}, nil
}
