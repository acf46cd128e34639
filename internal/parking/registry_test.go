package parking

import (
	"errors"
	"testing"
	"time"
)

var baseTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func reservedRegistry(t *testing.T, spotID, minutes int, at time.Time) Registry {
	t.Helper()
	reg, _, err := Reserve(DefaultRegistry(), ReservationRequest{
		HolderName:      "Alice",
		VehicleID:       "ABC123",
		DurationMinutes: minutes,
		SpotID:          spotID,
	}, at)
	if err != nil {
		t.Fatalf("Unexpected error reserving spot %d: %v", spotID, err)
	}
	return reg
}

// heldRegistry attaches a reservation of any length to spotID, bypassing
// the allowed-duration check that Reserve applies.
func heldRegistry(spotID int, d time.Duration, at time.Time) Registry {
	return DefaultRegistry().Replace(spotID, func(s Spot) Spot {
		return s.Reserve(Reservation{
			HolderName:      "Alice",
			VehicleID:       "ABC123",
			StartTime:       at,
			EndTime:         at.Add(d),
			DurationMinutes: int(d / time.Minute),
		})
	})
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	if reg.Len() != 6 {
		t.Fatalf("Expected 6 spots, got %d", reg.Len())
	}

	classes := []SpotClass{SpotClassCompact, SpotClassStandard, SpotClassLarge, SpotClassStandard, SpotClassCompact, SpotClassLarge}
	for i, spot := range reg.List() {
		if spot.ID != i+1 {
			t.Errorf("Expected spot id %d, got %d", i+1, spot.ID)
		}
		if spot.Class != classes[i] {
			t.Errorf("Expected spot %d to be %s, got %s", spot.ID, classes[i], spot.Class)
		}
		if spot.Occupied() {
			t.Errorf("Expected spot %d to be unoccupied", spot.ID)
		}
		g := spot.Geometry
		if g.X+g.Width > StageWidth || g.Y+g.Height > StageHeight {
			t.Errorf("Spot %d does not fit the stage: %+v", spot.ID, g)
		}
	}
}

func TestRegistryFind(t *testing.T) {
	reg := DefaultRegistry()

	spot, ok := reg.Find(4)
	if !ok {
		t.Fatal("Expected to find spot 4")
	}
	if spot.Class != SpotClassStandard {
		t.Errorf("Expected spot 4 to be standard, got %s", spot.Class)
	}

	if _, ok := reg.Find(42); ok {
		t.Error("Expected spot 42 to be absent")
	}
}

func TestRegistryReplaceIsCopyOnWrite(t *testing.T) {
	reg := DefaultRegistry()
	reservation := Reservation{HolderName: "A", VehicleID: "B1", StartTime: baseTime, EndTime: baseTime.Add(time.Minute), DurationMinutes: 1}

	next := reg.Replace(3, func(s Spot) Spot { return s.Reserve(reservation) })

	if original, _ := reg.Find(3); original.Occupied() {
		t.Error("Expected original registry to be unchanged")
	}
	updated, _ := next.Find(3)
	if !updated.Occupied() {
		t.Error("Expected spot 3 to be occupied in the new registry")
	}

	before, after := reg.List(), next.List()
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Errorf("Expected order to be preserved at %d: %d vs %d", i, before[i].ID, after[i].ID)
		}
		if before[i].ID != 3 && after[i].Occupied() {
			t.Errorf("Expected spot %d to be untouched", after[i].ID)
		}
	}
}

func TestRegistryReplaceKeepsID(t *testing.T) {
	next := DefaultRegistry().Replace(2, func(s Spot) Spot {
		s.ID = 99
		return s
	})
	if _, ok := next.Find(2); !ok {
		t.Error("Expected spot 2 to keep its id")
	}
	if _, ok := next.Find(99); ok {
		t.Error("Expected id 99 not to appear")
	}
}

func TestRegistryReplaceUnknownIDIsNoop(t *testing.T) {
	reg := DefaultRegistry()
	called := false

	next := reg.Replace(77, func(s Spot) Spot {
		called = true
		return s
	})

	if called {
		t.Error("Expected updater not to run for an unknown id")
	}
	if next.Occupied() != 0 || next.Len() != reg.Len() {
		t.Error("Expected registry to be unchanged")
	}
}

func TestListReturnsCopy(t *testing.T) {
	reg := DefaultRegistry()
	spots := reg.List()
	spots[0].Class = SpotClassLarge

	if first, _ := reg.Find(1); first.Class != SpotClassCompact {
		t.Error("Expected List to return a copy")
	}
}

func TestReadsDoNotShareReservations(t *testing.T) {
	reg := reservedRegistry(t, 1, 30, baseTime)
	past := baseTime.Add(-time.Hour)

	reg.List()[0].Reservation.EndTime = past
	found, _ := reg.Find(1)
	found.Reservation.EndTime = past
	AvailableSpots(reg, baseTime.Add(time.Hour))[0].Reservation.EndTime = past
	Search(reg, "alice", SearchName)[0].Reservation.EndTime = past

	spot, _ := reg.Find(1)
	if !spot.Reservation.EndTime.Equal(baseTime.Add(30 * time.Minute)) {
		t.Errorf("Expected registry end time to be untouched, got %v", spot.Reservation.EndTime)
	}
	if IsAvailable(spot, baseTime) {
		t.Error("Expected spot 1 to stay reserved")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	reg := reservedRegistry(t, 3, 30, baseTime)

	data, err := EncodeSnapshot(reg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	restored, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if restored.Len() != reg.Len() {
		t.Fatalf("Expected %d spots, got %d", reg.Len(), restored.Len())
	}

	spot, _ := restored.Find(3)
	if spot.Reservation == nil {
		t.Fatal("Expected spot 3 to keep its reservation")
	}
	if !spot.Reservation.StartTime.Equal(baseTime) {
		t.Errorf("Expected start time %v, got %v", baseTime, spot.Reservation.StartTime)
	}
	if !spot.Reservation.EndTime.Equal(baseTime.Add(30 * time.Minute)) {
		t.Errorf("Expected end time %v, got %v", baseTime.Add(30*time.Minute), spot.Reservation.EndTime)
	}
	if spot.Geometry != (Geometry{X: 350, Y: 50, Width: 100, Height: 70}) {
		t.Errorf("Unexpected geometry %+v", spot.Geometry)
	}
}

func TestDecodeSnapshotIgnoresStoredOccupiedFlag(t *testing.T) {
	data := []byte(`[{"id":1,"class":"compact","occupied":true,"geometry":{"x":0,"y":0,"width":10,"height":10}}]`)

	reg, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	spot, _ := reg.Find(1)
	if spot.Occupied() {
		t.Error("Expected occupancy to follow the missing reservation")
	}
}

func TestDecodeSnapshotErrors(t *testing.T) {
	cases := map[string]string{
		"malformed json":  `{not json`,
		"empty list":      `[]`,
		"duplicate ids":   `[{"id":1,"class":"compact"},{"id":1,"class":"large"}]`,
		"unknown class":   `[{"id":1,"class":"huge"}]`,
		"non-positive id": `[{"id":0,"class":"compact"}]`,
		"bad timestamp":   `[{"id":1,"class":"compact","reservation":{"holder_name":"A","vehicle_id":"B","start_time":"yesterday"}}]`,
		"blank holder":    `[{"id":1,"class":"compact","reservation":{"holder_name":" ","vehicle_id":"B","start_time":"2025-03-14T09:30:00Z","end_time":"2025-03-14T09:45:00Z","duration_minutes":15}}]`,
		"blank vehicle":   `[{"id":1,"class":"compact","reservation":{"holder_name":"A","vehicle_id":"","start_time":"2025-03-14T09:30:00Z","end_time":"2025-03-14T09:45:00Z","duration_minutes":15}}]`,
		"zero duration":   `[{"id":1,"class":"compact","reservation":{"holder_name":"A","vehicle_id":"B","start_time":"2025-03-14T09:30:00Z","end_time":"2025-03-14T09:30:00Z","duration_minutes":0}}]`,
		"end mismatch":    `[{"id":1,"class":"compact","reservation":{"holder_name":"A","vehicle_id":"B","start_time":"2025-03-14T09:30:00Z","end_time":"2025-03-14T11:00:00Z","duration_minutes":15}}]`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(input))
			var parseErr *StorageParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected StorageParseError, got %v", err)
			}
		})
	}
}
