package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"parking-lot/internal/logging"
	"parking-lot/internal/parking"
)

type Handler struct {
	service     parking.Service
	serviceName string
}

func NewHandler(service parking.Service, serviceName string) *Handler {
	return &Handler{
		service:     service,
		serviceName: serviceName,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

// writeEngineError maps engine errors onto HTTP statuses. Anything that is not
// an expected outcome is an internal fault.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, parking.ErrInvalidInput):
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, parking.ErrCapacityExceeded):
		WriteError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, parking.ErrInvalidTicket):
		WriteError(ctx, w, http.StatusNotFound, err.Error())
	case errors.Is(err, parking.ErrAlreadySettled):
		WriteError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, parking.ErrVehicleNotFound):
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
	default:
		logging.Error(ctx, "parking engine fault", "error", err, "path", r.URL.Path)
		WriteError(ctx, w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.LicensePlate = strings.TrimSpace(req.LicensePlate)
	if req.LicensePlate == "" || req.VehicleType == "" {
		WriteError(ctx, w, http.StatusBadRequest, "License plate and vehicle type are required")
		return
	}

	class, err := parking.ParseVehicleClass(req.VehicleType)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	ticket, err := h.service.Enter(ctx, class, req.LicensePlate)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", newTicketResponse(ticket))
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TicketID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket ID is required")
		return
	}

	ticket, err := h.service.Exit(ctx, req.TicketID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Ticket settled successfully", newTicketResponse(ticket))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticket, err := h.service.Ticket(ctx, chi.URLParam(r, "ticketID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Ticket retrieved successfully", newTicketResponse(ticket))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := h.service.Status(ctx)

	response := StatusResponse{
		Capacity:    status.Capacity,
		Occupied:    status.Occupied,
		Available:   status.Available,
		OpenTickets: status.OpenTickets,
		RatePerHour: h.service.Rate(),
		Classes:     make([]ClassStatus, 0, len(status.Classes)),
		Spots:       make([]SpotStatus, 0, len(status.Spots)),
	}

	for _, cs := range status.Classes {
		response.Classes = append(response.Classes, ClassStatus{
			VehicleType: cs.Class.String(),
			Capacity:    cs.Capacity,
			Occupied:    cs.Occupied,
			Available:   cs.Available,
		})
	}

	for _, spot := range status.Spots {
		response.Spots = append(response.Spots, SpotStatus{
			SpotID:       spot.ID,
			VehicleType:  spot.Class.String(),
			LicensePlate: spot.Holder,
			Occupied:     spot.Occupied,
		})
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", response)
}

func (h *Handler) FindByLicensePlate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plate := chi.URLParam(r, "plate")
	if plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "License plate is required")
		return
	}

	spot, err := h.service.FindByHolder(ctx, plate)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", FindVehicleResponse{
		SpotID:       spot.ID,
		LicensePlate: spot.Holder,
		VehicleType:  spot.Class.String(),
	})
}
