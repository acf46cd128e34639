package parking

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type SpotClass string

const (
	SpotClassCompact  SpotClass = "compact"
	SpotClassStandard SpotClass = "standard"
	SpotClassLarge    SpotClass = "large"
)

// Title returns the class name with its first letter upper-cased, as shown
// on grid labels.
func (c SpotClass) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

func (c SpotClass) Valid() bool {
	switch c {
	case SpotClassCompact, SpotClassStandard, SpotClassLarge:
		return true
	}
	return false
}

type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Reservation struct {
	HolderName      string    `json:"holder_name"`
	VehicleID       string    `json:"vehicle_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Expired reports whether the reservation has elapsed at now.
func (r *Reservation) Expired(now time.Time) bool {
	return !r.EndTime.After(now)
}

// validate checks a restored reservation against the rules Reserve
// enforces when creating one.
func (r *Reservation) validate() error {
	if strings.TrimSpace(r.HolderName) == "" || strings.TrimSpace(r.VehicleID) == "" {
		return errors.New("reservation is missing holder name or vehicle id")
	}
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("reservation duration must be positive, got %d", r.DurationMinutes)
	}
	if !r.EndTime.Equal(r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)) {
		return fmt.Errorf("reservation end time %s does not match start plus %d minutes",
			r.EndTime.Format(time.RFC3339), r.DurationMinutes)
	}
	return nil
}

// Spot is a fixed parking location. Occupancy is derived from Reservation
// and never stored separately.
type Spot struct {
	ID          int          `json:"id"`
	Geometry    Geometry     `json:"geometry"`
	Class       SpotClass    `json:"class"`
	Reservation *Reservation `json:"reservation,omitempty"`
}

func NewSpot(id int, class SpotClass, geometry Geometry) Spot {
	return Spot{
		ID:       id,
		Geometry: geometry,
		Class:    class,
	}
}

func (s Spot) Occupied() bool {
	return s.Reservation != nil
}

// Reserve returns a copy of the spot holding r.
func (s Spot) Reserve(r Reservation) Spot {
	s.Reservation = &r
	return s
}

// Clone returns a copy that shares no reservation with s.
func (s Spot) Clone() Spot {
	if s.Reservation != nil {
		r := *s.Reservation
		s.Reservation = &r
	}
	return s
}

// Release returns a copy of the spot with no reservation.
func (s Spot) Release() Spot {
	s.Reservation = nil
	return s
}

type spotJSON struct {
	ID          int          `json:"id"`
	Geometry    Geometry     `json:"geometry"`
	Class       SpotClass    `json:"class"`
	Occupied    bool         `json:"occupied"`
	Reservation *Reservation `json:"reservation,omitempty"`
}

// MarshalJSON emits the derived occupied flag for renderers.
func (s Spot) MarshalJSON() ([]byte, error) {
	return json.Marshal(spotJSON{
		ID:          s.ID,
		Geometry:    s.Geometry,
		Class:       s.Class,
		Occupied:    s.Occupied(),
		Reservation: s.Reservation,
	})
}

// UnmarshalJSON ignores any stored occupied flag; the reservation alone
// decides occupancy.
func (s *Spot) UnmarshalJSON(data []byte) error {
	var raw spotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID <= 0 {
		return fmt.Errorf("spot id must be positive, got %d", raw.ID)
	}
	if !raw.Class.Valid() {
		return fmt.Errorf("spot %d: unknown class %q", raw.ID, raw.Class)
	}
	if raw.Reservation != nil {
		if err := raw.Reservation.validate(); err != nil {
			return fmt.Errorf("spot %d: %w", raw.ID, err)
		}
	}
	*s = Spot{
		ID:          raw.ID,
		Geometry:    raw.Geometry,
		Class:       raw.Class,
		Reservation: raw.Reservation,
	}
	return nil
}
