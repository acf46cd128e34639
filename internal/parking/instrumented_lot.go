package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedLot struct {
	*Lot
	telemetry *TelemetryProvider

	// Metrics
	reserveOperations metric.Int64Counter
	expiredTotal      metric.Int64Counter
	searchOperations  metric.Int64Counter
	occupancyGauge    metric.Int64ObservableGauge
	operationDuration metric.Float64Histogram
}

func NewInstrumentedLot(lot *Lot, telemetry *TelemetryProvider) (*InstrumentedLot, error) {
	meter := telemetry.Meter()

	reserveOperations, err := meter.Int64Counter("reservation_operations_total",
		metric.WithDescription("Total number of reservation attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	expiredTotal, err := meter.Int64Counter("reservations_expired_total",
		metric.WithDescription("Total number of reservations released by the expiry sweep"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	searchOperations, err := meter.Int64Counter("search_operations_total",
		metric.WithDescription("Total number of spot searches"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64ObservableGauge("parking_spots_occupied",
		metric.WithDescription("Current number of reserved parking spots"),
		metric.WithUnit("1"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(lot.Registry().Occupied()))
			return nil
		}))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking spot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	il := &InstrumentedLot{
		Lot:               lot,
		telemetry:         telemetry,
		reserveOperations: reserveOperations,
		expiredTotal:      expiredTotal,
		searchOperations:  searchOperations,
		occupancyGauge:    occupancyGauge,
		operationDuration: operationDuration,
	}

	return il, nil
}

func (il *InstrumentedLot) Reserve(ctx context.Context, req ReservationRequest) (Confirmation, error) {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_lot.reserve",
		trace.WithAttributes(
			attribute.Int("spot.id", req.SpotID),
			attribute.Int("reservation.duration_minutes", req.DurationMinutes),
		))
	defer span.End()

	start := time.Now()

	confirmation, err := il.Lot.Reserve(ctx, req)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "reserve"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels,
			attribute.String("status", "failed"),
			attribute.String("reason", failureReason(err)),
		)
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(attribute.String("reservation.end_time", confirmation.Reservation.EndTime.Format(time.RFC3339)))
		span.AddEvent("spot_reserved", trace.WithAttributes(
			attribute.Int("spot_id", confirmation.SpotID),
		))
	}

	il.reserveOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return confirmation, err
}

func (il *InstrumentedLot) Sweep(ctx context.Context) []int {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_lot.sweep")
	defer span.End()

	start := time.Now()

	released := il.Lot.Sweep(ctx)

	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Int("released_count", len(released)))
	if len(released) > 0 {
		span.AddEvent("reservations_expired", trace.WithAttributes(
			attribute.IntSlice("spot_ids", released),
		))
		il.expiredTotal.Add(ctx, int64(len(released)))
	}

	il.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "sweep"),
		attribute.String("status", "success"),
	))

	return released
}

func (il *InstrumentedLot) Search(ctx context.Context, query string, field SearchField) []Spot {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_lot.search",
		trace.WithAttributes(
			attribute.String("search.field", string(field)),
			attribute.Int("search.query_length", len(query)),
		))
	defer span.End()

	start := time.Now()

	spots := il.Lot.Search(query, field)

	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Int("search.results", len(spots)))

	labels := []attribute.KeyValue{
		attribute.String("operation", "search"),
		attribute.String("field", string(field)),
	}

	il.searchOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return spots
}

func (il *InstrumentedLot) Available(ctx context.Context) []Spot {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_lot.available")
	defer span.End()

	start := time.Now()

	spots := il.Lot.Available()

	duration := time.Since(start).Seconds()

	span.SetAttributes(
		attribute.Int("available_spots_count", len(spots)),
		attribute.Int("total_spots", il.Registry().Len()),
	)

	il.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "available"),
		attribute.String("status", "success"),
	))

	return spots
}

func (il *InstrumentedLot) Details(ctx context.Context, id int) (SpotDetails, error) {
	_, span := il.telemetry.Tracer().Start(ctx, "parking_lot.details",
		trace.WithAttributes(attribute.Int("spot.id", id)))
	defer span.End()

	details, err := il.Lot.Details(id)
	if err != nil {
		span.AddEvent("spot_not_found")
		return details, err
	}

	span.SetAttributes(attribute.String("spot.status", details.Status))
	return details, nil
}

func failureReason(err error) string {
	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing):
		return "missing_field"
	case errors.Is(err, ErrInvalidDuration):
		return "invalid_duration"
	case errors.Is(err, ErrSpotNotFound):
		return "spot_not_found"
	case errors.Is(err, ErrSpotUnavailable):
		return "spot_unavailable"
	default:
		return "unknown"
	}
}
