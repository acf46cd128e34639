package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runShell(t *testing.T, lot *Lot, input string) string {
	t.Helper()
	telemetry, _, _ := newTestTelemetry(t)

	il, err := NewInstrumentedLot(lot, telemetry)
	require.NoError(t, err)

	var out bytes.Buffer
	NewInstrumentedShell(il, telemetry, strings.NewReader(input), &out).Run(context.Background())
	return out.String()
}

func TestShellReserveAndStatus(t *testing.T) {
	lot, _ := newTestLot(t, &fakeStore{})

	out := runShell(t, lot, "reserve 2 30 KA01HH1234 Jane Doe\nstatus\n")

	assert.Contains(t, out, "Reservation confirmed\n")
	assert.Contains(t, out, "Name: Jane Doe\n")
	assert.Contains(t, out, "Vehicle Number: KA01HH1234\n")
	assert.Contains(t, out, "Spot Number: 2\n")
	assert.Contains(t, out, "Duration: 30 minutes\n")
	assert.Contains(t, out, "Start Time: "+baseTime.Local().Format(shellTimeLayout))
	assert.Contains(t, out, "End Time: "+baseTime.Add(30*time.Minute).Local().Format(shellTimeLayout))

	assert.Contains(t, out, "Spot\tClass\tStatus\tName\tVehicle\n")
	assert.Contains(t, out, "1\tcompact\tfree\t-\t-\n")
	assert.Contains(t, out, "2\tstandard\toccupied\tJane Doe\tKA01HH1234\n")
}

func TestShellReserveErrors(t *testing.T) {
	lot, _ := newTestLot(t, &fakeStore{})

	out := runShell(t, lot, strings.Join([]string{
		"reserve 1 15 ABC",
		"reserve x 15 ABC Al",
		"reserve 1 x ABC Al",
		"reserve 1 20 ABC Al",
		"reserve 9 15 ABC Al",
		"reserve 1 15 ABC Al",
		"reserve 1 15 XYZ Bo",
	}, "\n"))

	assert.Contains(t, out, "Usage: reserve <spot_id> <minutes> <vehicle_id> <holder_name>\n")
	assert.Contains(t, out, "Invalid spot id\n")
	assert.Contains(t, out, "Invalid duration\n")
	assert.Contains(t, out, "Error: Duration must be one of [1 15 30 45 60 90 120 180 240 300 360] minutes\n")
	assert.Contains(t, out, "Error: Spot not found\n")
	assert.Contains(t, out, "Error: Spot is already reserved\n")
	assert.Equal(t, 1, strings.Count(out, "Reservation confirmed"))
}

func TestShellAvailableAndSearch(t *testing.T) {
	lot, _ := newTestLot(t, &fakeStore{})

	out := runShell(t, lot, "reserve 4 60 MH12AB0001 Ravi\navailable\nsearch vehicle mh12\nsearch name nobody\n")

	assert.Contains(t, out, "Spot 1 - compact\n")
	assert.NotContains(t, out, "Spot 4 - standard\n")
	assert.Contains(t, out, "4\tstandard\toccupied\tRavi\tMH12AB0001\n")
	assert.Contains(t, out, "No matching spots\n")
}

func TestShellDetails(t *testing.T) {
	lot, clock := newTestLot(t, &fakeStore{})
	_, err := lot.Reserve(context.Background(), ReservationRequest{
		HolderName: "Ravi", VehicleID: "MH12AB0001", DurationMinutes: 15, SpotID: 6,
	})
	require.NoError(t, err)
	clock.Advance(5*time.Minute + 30*time.Second)

	out := runShell(t, lot, "details 6\ndetails 1\ndetails 42\ndetails\n")

	assert.Contains(t, out, "Spot 6 Details\nStatus: Occupied\nType: large\nName: Ravi\n")
	assert.Contains(t, out, "Time Remaining: 9m 30s\n")
	assert.Contains(t, out, "Spot 1 Details\nStatus: Available\nType: compact\nThis spot is available for reservation.\n")
	assert.Contains(t, out, "Not found\n")
	assert.Contains(t, out, "Usage: details <spot_id>\n")
}

func TestShellDurationsAndUnknown(t *testing.T) {
	lot, _ := newTestLot(t, nil)

	out := runShell(t, lot, "durations\n\nfly\n")

	assert.True(t, strings.HasPrefix(out, "1 minutes\n15 minutes\n"))
	assert.Contains(t, out, "360 minutes\n")
	assert.Contains(t, out, "Unknown command: fly\n")
}
