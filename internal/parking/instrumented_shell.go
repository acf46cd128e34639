package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const shellTimeLayout = "2006-01-02 15:04:05"

type InstrumentedShell struct {
	lot       *InstrumentedLot
	scanner   *bufio.Scanner
	out       io.Writer
	telemetry *TelemetryProvider
}

func NewInstrumentedShell(lot *InstrumentedLot, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *InstrumentedShell {
	return &InstrumentedShell{
		lot:       lot,
		scanner:   bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry,
	}
}

func (s *InstrumentedShell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for {
		if ctx.Err() != nil || !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) processCommand(ctx context.Context, input string) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.parse_command")
	defer span.End()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "status":
		s.handleStatus(ctx)
	case "available":
		s.handleAvailable(ctx)
	case "reserve":
		s.handleReserve(ctx, parts)
	case "search":
		s.handleSearch(ctx, parts)
	case "details":
		s.handleDetails(ctx, parts)
	case "durations":
		s.handleDurations()
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *InstrumentedShell) handleStatus(ctx context.Context) {
	_, span := s.telemetry.Tracer().Start(ctx, "shell.status_command")
	defer span.End()

	spots := s.lot.Spots()
	span.SetAttributes(attribute.Int("spots_count", len(spots)))
	s.printSpots(spots)
}

func (s *InstrumentedShell) handleAvailable(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.available_command")
	defer span.End()

	spots := s.lot.Available(ctx)
	if len(spots) == 0 {
		span.AddEvent("no_spots_available")
		s.printf("No spots available\n")
		return
	}

	for _, spot := range spots {
		s.printf("Spot %d - %s\n", spot.ID, spot.Class)
	}
}

func (s *InstrumentedShell) handleReserve(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.reserve_command")
	defer span.End()

	if len(parts) < 5 {
		span.AddEvent("invalid_arguments")
		s.printf("Usage: reserve <spot_id> <minutes> <vehicle_id> <holder_name>\n")
		return
	}

	spotID, err := strconv.Atoi(parts[1])
	if err != nil {
		span.RecordError(fmt.Errorf("invalid spot id: %s", parts[1]))
		s.printf("Invalid spot id\n")
		return
	}

	minutes, err := strconv.Atoi(parts[2])
	if err != nil {
		span.RecordError(fmt.Errorf("invalid duration: %s", parts[2]))
		s.printf("Invalid duration\n")
		return
	}

	req := ReservationRequest{
		SpotID:          spotID,
		DurationMinutes: minutes,
		VehicleID:       parts[3],
		HolderName:      strings.Join(parts[4:], " "),
	}

	confirmation, err := s.lot.Reserve(ctx, req)
	if err != nil {
		span.AddEvent("reservation_failed")
		s.printf("Error: %s\n", describeReserveError(err))
		return
	}

	span.AddEvent("reservation_confirmed", trace.WithAttributes(
		attribute.Int("spot_id", confirmation.SpotID),
	))

	r := confirmation.Reservation
	s.printf("Reservation confirmed\n")
	s.printf("Name: %s\n", r.HolderName)
	s.printf("Vehicle Number: %s\n", r.VehicleID)
	s.printf("Spot Number: %d\n", confirmation.SpotID)
	s.printf("Duration: %d minutes\n", r.DurationMinutes)
	s.printf("Start Time: %s\n", r.StartTime.Local().Format(shellTimeLayout))
	s.printf("End Time: %s\n", r.EndTime.Local().Format(shellTimeLayout))
}

func (s *InstrumentedShell) handleSearch(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.search_command")
	defer span.End()

	if len(parts) < 2 {
		span.AddEvent("invalid_arguments")
		s.printf("Usage: search <all|spot|name|vehicle> [query]\n")
		return
	}

	field := ParseSearchField(parts[1])
	query := strings.Join(parts[2:], " ")

	spots := s.lot.Search(ctx, query, field)
	if len(spots) == 0 {
		span.AddEvent("no_matches")
		s.printf("No matching spots\n")
		return
	}
	s.printSpots(spots)
}

func (s *InstrumentedShell) handleDetails(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.details_command")
	defer span.End()

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		s.printf("Usage: details <spot_id>\n")
		return
	}

	spotID, err := strconv.Atoi(parts[1])
	if err != nil {
		span.RecordError(fmt.Errorf("invalid spot id: %s", parts[1]))
		s.printf("Invalid spot id\n")
		return
	}

	d, err := s.lot.Details(ctx, spotID)
	if err != nil {
		s.printf("Not found\n")
		return
	}

	s.printf("Spot %d Details\n", d.ID)
	s.printf("Status: %s\n", d.Status)
	s.printf("Type: %s\n", d.Class)
	if d.Reservation == nil {
		s.printf("This spot is available for reservation.\n")
		return
	}
	s.printf("Name: %s\n", d.Reservation.HolderName)
	s.printf("Vehicle Number: %s\n", d.Reservation.VehicleID)
	s.printf("Duration: %d minutes\n", d.Reservation.DurationMinutes)
	s.printf("Start Time: %s\n", d.Reservation.StartTime.Local().Format(time.TimeOnly))
	s.printf("End Time: %s\n", d.Reservation.EndTime.Local().Format(time.TimeOnly))
	s.printf("Time Remaining: %s\n", d.TimeRemaining)
}

func (s *InstrumentedShell) handleDurations() {
	for _, minutes := range AllowedDurations() {
		s.printf("%d minutes\n", minutes)
	}
}

func (s *InstrumentedShell) printSpots(spots []Spot) {
	s.printf("Spot\tClass\tStatus\tName\tVehicle\n")
	for _, spot := range spots {
		if spot.Reservation == nil {
			s.printf("%d\t%s\tfree\t-\t-\n", spot.ID, spot.Class)
			continue
		}
		s.printf("%d\t%s\toccupied\t%s\t%s\n", spot.ID, spot.Class, spot.Reservation.HolderName, spot.Reservation.VehicleID)
	}
}

func (s *InstrumentedShell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func describeReserveError(err error) string {
	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing):
		return "All fields are required"
	case errors.Is(err, ErrInvalidDuration):
		return fmt.Sprintf("Duration must be one of %v minutes", AllowedDurations())
	case errors.Is(err, ErrSpotNotFound):
		return "Spot not found"
	case errors.Is(err, ErrSpotUnavailable):
		return "Spot is already reserved"
	default:
		return err.Error()
	}
}
