package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchRegistry(t *testing.T) Registry {
	t.Helper()
	reg := DefaultRegistry()
	for _, req := range []ReservationRequest{
		{HolderName: "Alice Smith", VehicleID: "abc123", DurationMinutes: 60, SpotID: 2},
		{HolderName: "Bob Jones", VehicleID: "XYZ-12", DurationMinutes: 30, SpotID: 5},
	} {
		var err error
		reg, _, err = Reserve(reg, req, baseTime)
		require.NoError(t, err)
	}
	return reg
}

func ids(spots []Spot) []int {
	out := make([]int, 0, len(spots))
	for _, s := range spots {
		out = append(out, s.ID)
	}
	return out
}

func TestSearchBlankQueryReturnsAll(t *testing.T) {
	reg := searchRegistry(t)

	for _, field := range []SearchField{SearchAll, SearchSpot, SearchName, SearchVehicle} {
		for _, q := range []string{"", "   ", "\t"} {
			assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(Search(reg, q, field)), "field %s query %q", field, q)
		}
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	reg := searchRegistry(t)

	assert.Equal(t, []int{2}, ids(Search(reg, "ABC", SearchVehicle)))
	assert.Equal(t, []int{5}, ids(Search(reg, "xyz", SearchVehicle)))
	assert.Equal(t, []int{2}, ids(Search(reg, "aLiCe", SearchName)))
}

func TestSearchByField(t *testing.T) {
	reg := searchRegistry(t)

	tests := []struct {
		query string
		field SearchField
		want  []int
	}{
		{"1", SearchSpot, []int{1}},
		{"1", SearchVehicle, []int{2, 5}},
		{"1", SearchAll, []int{1, 2, 5}},
		{"o", SearchName, []int{5}},
		{"smith", SearchVehicle, []int{}},
		{"3", SearchName, []int{}},
		{"3", SearchAll, []int{2, 3}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ids(Search(reg, tt.query, tt.field)), "query %q field %s", tt.query, tt.field)
	}
}

func TestSearchSkipsFreeSpotsForReservationFields(t *testing.T) {
	reg := DefaultRegistry()

	assert.Empty(t, Search(reg, "a", SearchName))
	assert.Empty(t, Search(reg, "a", SearchVehicle))
}

func TestParseSearchField(t *testing.T) {
	assert.Equal(t, SearchSpot, ParseSearchField("spotNumber"))
	assert.Equal(t, SearchSpot, ParseSearchField("spot"))
	assert.Equal(t, SearchName, ParseSearchField("holderName"))
	assert.Equal(t, SearchVehicle, ParseSearchField("VEHICLE_ID"))
	assert.Equal(t, SearchAll, ParseSearchField(""))
	assert.Equal(t, SearchAll, ParseSearchField("colour"))
}
