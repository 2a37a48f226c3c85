package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-lot/internal/logging"
	"parking-lot/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type EntryRequest struct {
	LicensePlate string `json:"license_plate"`
	VehicleType  string `json:"vehicle_type"`
}

type ExitRequest struct {
	TicketID string `json:"ticket_id"`
}

type TicketResponse struct {
	TicketID     string     `json:"ticket_id"`
	SpotID       string     `json:"spot_id"`
	LicensePlate string     `json:"license_plate"`
	VehicleType  string     `json:"vehicle_type"`
	EntryTime    time.Time  `json:"entry_time"`
	Fee          float64    `json:"fee"`
	Settled      bool       `json:"settled"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

func newTicketResponse(t parking.Ticket) TicketResponse {
	resp := TicketResponse{
		TicketID:     t.ID,
		SpotID:       t.SpotID,
		LicensePlate: t.LicensePlate,
		VehicleType:  t.Class.String(),
		EntryTime:    t.EntryTime,
		Fee:          t.Fee,
		Settled:      t.Settled,
	}
	if t.Settled {
		settledAt := t.SettledAt
		resp.SettledAt = &settledAt
	}
	return resp
}

type FindVehicleResponse struct {
	SpotID       string `json:"spot_id"`
	LicensePlate string `json:"license_plate"`
	VehicleType  string `json:"vehicle_type"`
}

type SpotStatus struct {
	SpotID       string `json:"spot_id"`
	VehicleType  string `json:"vehicle_type"`
	LicensePlate string `json:"license_plate,omitempty"`
	Occupied     bool   `json:"occupied"`
}

type ClassStatus struct {
	VehicleType string `json:"vehicle_type"`
	Capacity    int    `json:"capacity"`
	Occupied    int    `json:"occupied"`
	Available   int    `json:"available"`
}

type StatusResponse struct {
	Capacity    int           `json:"capacity"`
	Occupied    int           `json:"occupied"`
	Available   int           `json:"available"`
	OpenTickets int           `json:"open_tickets"`
	RatePerHour float64       `json:"rate_per_hour"`
	Classes     []ClassStatus `json:"classes"`
	Spots       []SpotStatus  `json:"spots"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Logger().Error("failed to write response", "error", err)
	}
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
