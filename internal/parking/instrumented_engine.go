package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-lot/internal/logging"
)

// Service is what the shell and the HTTP server drive.
type Service interface {
	Enter(ctx context.Context, class VehicleClass, licensePlate string) (Ticket, error)
	Exit(ctx context.Context, ticketID string) (Ticket, error)
	Ticket(ctx context.Context, ticketID string) (Ticket, error)
	FindByHolder(ctx context.Context, licensePlate string) (Spot, error)
	Status(ctx context.Context) Status
	Rate() float64
}

type InstrumentedEngine struct {
	*Engine
	telemetry *TelemetryProvider

	// Metrics
	entryOperations   metric.Int64Counter
	exitOperations    metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	feesCollected     metric.Float64Counter
	stayDuration      metric.Float64Histogram
}

var _ Service = (*InstrumentedEngine)(nil)

func NewInstrumentedEngine(engine *Engine, telemetry *TelemetryProvider) (*InstrumentedEngine, error) {
	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("parking.entry.operations",
		metric.WithDescription("Total number of entry operations"),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("parking.exit.operations",
		metric.WithDescription("Total number of exit operations"),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking.occupancy",
		metric.WithDescription("Current number of occupied parking spots"),
		metric.WithUnit("{spot}"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("parking.operation.duration",
		metric.WithDescription("Duration of parking engine operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Float64Counter("parking.fees.collected",
		metric.WithDescription("Total fees charged on settled tickets"),
		metric.WithUnit("{currency}"))
	if err != nil {
		return nil, err
	}

	stayDuration, err := meter.Float64Histogram("parking.stay.duration",
		metric.WithDescription("Time between entry and settlement"),
		metric.WithUnit("h"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 12, 24, 48))
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge("parking.capacity",
		metric.WithDescription("Total number of parking spots by vehicle class"),
		metric.WithUnit("{spot}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			for _, cs := range engine.Status().Classes {
				o.Observe(int64(cs.Capacity), metric.WithAttributes(attribute.String("vehicle_type", cs.Class.String())))
			}
			return nil
		}))
	if err != nil {
		return nil, err
	}

	return &InstrumentedEngine{
		Engine:            engine,
		telemetry:         telemetry,
		entryOperations:   entryOperations,
		exitOperations:    exitOperations,
		occupancyGauge:    occupancyGauge,
		operationDuration: operationDuration,
		feesCollected:     feesCollected,
		stayDuration:      stayDuration,
	}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCapacityExceeded):
		return "full"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInvalidTicket):
		return "invalid_ticket"
	case errors.Is(err, ErrAlreadySettled):
		return "already_settled"
	case errors.Is(err, ErrVehicleNotFound):
		return "not_found"
	default:
		return "failed"
	}
}

// recordFailure marks the span and logs. Expected outcomes stay out of the
// error status so a full lot does not page anyone.
func recordFailure(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	if IsExpected(err) {
		span.AddEvent(outcome(err))
		logging.Info(ctx, op+" rejected", "error", err, "outcome", outcome(err))
		return
	}
	span.SetStatus(codes.Error, err.Error())
	logging.Error(ctx, op+" failed", "error", err)
}

func (ie *InstrumentedEngine) Enter(ctx context.Context, class VehicleClass, licensePlate string) (Ticket, error) {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "parking_lot.enter",
		trace.WithAttributes(
			attribute.String("vehicle.license_plate", licensePlate),
			attribute.String("vehicle.class", class.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_available_spot")

	ticket, err := ie.Engine.Enter(class, licensePlate)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "enter"),
		attribute.String("vehicle_type", class.String()),
		attribute.String("status", outcome(err)),
	}

	if err != nil {
		recordFailure(ctx, span, "enter", err)
	} else {
		span.SetAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.String("spot.id", ticket.SpotID),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(
			attribute.String("spot_id", ticket.SpotID),
		))
		ie.occupancyGauge.Add(ctx, 1, metric.WithAttributes(attribute.String("vehicle_type", class.String())))
		logging.Info(ctx, "vehicle entered",
			"ticket_id", ticket.ID,
			"spot_id", ticket.SpotID,
			"license_plate", licensePlate,
			"vehicle_type", class.String(),
		)
	}

	ie.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ie.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ie *InstrumentedEngine) Exit(ctx context.Context, ticketID string) (Ticket, error) {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "parking_lot.exit",
		trace.WithAttributes(
			attribute.String("ticket.id", ticketID),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("settling_ticket")

	ticket, err := ie.Engine.Exit(ticketID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "exit"),
		attribute.String("status", outcome(err)),
	}

	if err != nil {
		recordFailure(ctx, span, "exit", err)
	} else {
		classAttr := attribute.String("vehicle_type", ticket.Class.String())
		labels = append(labels, classAttr)
		span.SetAttributes(
			attribute.String("spot.id", ticket.SpotID),
			attribute.String("vehicle.license_plate", ticket.LicensePlate),
			attribute.Float64("ticket.fee", ticket.Fee),
		)
		span.AddEvent("spot_released", trace.WithAttributes(
			attribute.String("spot_id", ticket.SpotID),
		))
		ie.occupancyGauge.Add(ctx, -1, metric.WithAttributes(classAttr))
		ie.feesCollected.Add(ctx, ticket.Fee, metric.WithAttributes(classAttr))
		ie.stayDuration.Record(ctx, ticket.SettledAt.Sub(ticket.EntryTime).Hours(), metric.WithAttributes(classAttr))
		logging.Info(ctx, "vehicle exited",
			"ticket_id", ticket.ID,
			"spot_id", ticket.SpotID,
			"license_plate", ticket.LicensePlate,
			"fee", ticket.Fee,
		)
	}

	ie.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ie.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ie *InstrumentedEngine) Ticket(ctx context.Context, ticketID string) (Ticket, error) {
	_, span := ie.telemetry.Tracer().Start(ctx, "parking_lot.get_ticket",
		trace.WithAttributes(
			attribute.String("ticket.id", ticketID),
		))
	defer span.End()

	ticket, err := ie.Engine.Ticket(ticketID)
	if err != nil {
		span.AddEvent("ticket_not_found")
		return ticket, err
	}

	span.SetAttributes(attribute.Bool("ticket.settled", ticket.Settled))
	return ticket, nil
}

func (ie *InstrumentedEngine) FindByHolder(ctx context.Context, licensePlate string) (Spot, error) {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "parking_lot.find_by_holder",
		trace.WithAttributes(
			attribute.String("vehicle.license_plate", licensePlate),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("searching_by_license_plate")

	spot, err := ie.Engine.FindByHolder(licensePlate)

	labels := []attribute.KeyValue{
		attribute.String("operation", "find_by_holder"),
	}

	if err != nil {
		span.AddEvent("vehicle_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	} else {
		span.SetAttributes(attribute.String("spot.id", spot.ID))
		labels = append(labels, attribute.String("status", "found"))
	}

	ie.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return spot, err
}

func (ie *InstrumentedEngine) Status(ctx context.Context) Status {
	ctx, span := ie.telemetry.Tracer().Start(ctx, "parking_lot.get_status")
	defer span.End()

	start := time.Now()

	status := ie.Engine.Status()

	span.SetAttributes(
		attribute.Int("occupied_spots_count", status.Occupied),
		attribute.Int("total_capacity", status.Capacity),
		attribute.Int("open_tickets", status.OpenTickets),
	)

	labels := []attribute.KeyValue{
		attribute.String("operation", "get_status"),
		attribute.String("status", "success"),
	}

	ie.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return status
}
