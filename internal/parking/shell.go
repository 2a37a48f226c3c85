package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Shell struct {
	service   Service
	scanner   *bufio.Scanner
	out       io.Writer
	telemetry *TelemetryProvider
}

func NewShell(service Service, telemetry *TelemetryProvider, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		service:   service,
		scanner:   bufio.NewScanner(in),
		out:       out,
		telemetry: telemetry,
	}
}

func (s *Shell) Run(ctx context.Context) {
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

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	span := trace.SpanFromContext(ctx)

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	command := parts[0]
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "enter":
		s.handleEnter(ctx, parts)
	case "exit":
		s.handleExit(ctx, parts)
	case "ticket":
		s.handleTicket(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "find":
		s.handleFind(ctx, parts)
	case "rate":
		s.printf("Rate per hour: %.2f\n", s.service.Rate())
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleEnter(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.printf("Usage: enter <vehicle_type> <license_plate>\n")
		return
	}

	class, err := ParseVehicleClass(parts[1])
	if err != nil {
		s.printf("Invalid vehicle type: %s\n", parts[1])
		return
	}

	ticket, err := s.service.Enter(ctx, class, parts[2])
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		s.printf("Sorry, no %s spot available\n", class)
	case err != nil:
		s.printf("Error: %s\n", err.Error())
	default:
		s.printf("Ticket %s issued for spot %s\n", ticket.ID, ticket.SpotID)
	}
}

func (s *Shell) handleExit(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: exit <ticket_id>\n")
		return
	}

	ticket, err := s.service.Exit(ctx, parts[1])
	switch {
	case errors.Is(err, ErrInvalidTicket):
		s.printf("Unknown ticket: %s\n", parts[1])
	case errors.Is(err, ErrAlreadySettled):
		s.printf("Ticket %s is already settled\n", parts[1])
	case err != nil:
		s.printf("Error: %s\n", err.Error())
	default:
		s.printf("Ticket %s settled: spot %s released, fee %.2f\n", ticket.ID, ticket.SpotID, ticket.Fee)
	}
}

func (s *Shell) handleTicket(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: ticket <ticket_id>\n")
		return
	}

	ticket, err := s.service.Ticket(ctx, parts[1])
	if err != nil {
		s.printf("Unknown ticket: %s\n", parts[1])
		return
	}

	state := "open"
	if ticket.Settled {
		state = fmt.Sprintf("settled, fee %.2f", ticket.Fee)
	}
	s.printf("%s\t%s\t%s\t%s\n", ticket.ID, ticket.SpotID, ticket.LicensePlate, state)
}

func (s *Shell) handleStatus(ctx context.Context) {
	status := s.service.Status(ctx)
	if status.Occupied == 0 {
		s.printf("Parking lot is empty\n")
		return
	}

	s.printf("Spot\tType\tLicense Plate\n")
	for _, spot := range status.Spots {
		if spot.Occupied {
			s.printf("%s\t%s\t%s\n", spot.ID, spot.Class, spot.Holder)
		}
	}
}

func (s *Shell) handleFind(ctx context.Context, parts []string) {
	if len(parts) != 2 {
		s.printf("Usage: find <license_plate>\n")
		return
	}

	spot, err := s.service.FindByHolder(ctx, parts[1])
	if err != nil {
		s.printf("Not found\n")
		return
	}
	s.printf("%s\n", spot.ID)
}
