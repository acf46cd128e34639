package parking

import (
	"strconv"
	"strings"
)

type SearchField string

const (
	SearchAll     SearchField = "all"
	SearchSpot    SearchField = "spot"
	SearchName    SearchField = "name"
	SearchVehicle SearchField = "vehicle"
)

// ParseSearchField maps a selector to a SearchField. Anything
// unrecognised searches all fields.
func ParseSearchField(s string) SearchField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spot", "spotnumber", "spot_number":
		return SearchSpot
	case "name", "holdername", "holder_name":
		return SearchName
	case "vehicle", "vehicleid", "vehicle_id":
		return SearchVehicle
	default:
		return SearchAll
	}
}

// Search filters reg by a case-insensitive substring query on the selected
// field. A blank query returns every spot. Order is preserved.
func Search(reg Registry, query string, field SearchField) []Spot {
	if strings.TrimSpace(query) == "" {
		return reg.List()
	}

	q := strings.ToLower(query)
	var matches []Spot
	for _, spot := range reg.spots {
		if spotMatches(spot, q, field) {
			matches = append(matches, spot.Clone())
		}
	}
	return matches
}

func spotMatches(spot Spot, q string, field SearchField) bool {
	idMatch := strings.Contains(strconv.Itoa(spot.ID), q)
	nameMatch := spot.Reservation != nil && strings.Contains(strings.ToLower(spot.Reservation.HolderName), q)
	vehicleMatch := spot.Reservation != nil && strings.Contains(strings.ToLower(spot.Reservation.VehicleID), q)

	switch field {
	case SearchSpot:
		return idMatch
	case SearchName:
		return nameMatch
	case SearchVehicle:
		return vehicleMatch
	default:
		return idMatch || nameMatch || vehicleMatch
	}
}
