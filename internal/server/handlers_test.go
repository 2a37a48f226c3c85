package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"parking-lot/internal/parking"
)

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Meta    *Meta           `json:"meta"`
}

func newTestServer(t *testing.T, inventory parking.Inventory) (http.Handler, *parking.Engine) {
	t.Helper()

	engine, err := parking.NewEngine(inventory, 10)
	require.NoError(t, err)

	telemetry := parking.NewTelemetryProviderFrom(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	service, err := parking.NewInstrumentedEngine(engine, telemetry)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(parking.NewOccupancyCollector(engine))

	return NewServer("0", service, "parking-lot-test", registry).Handler(), engine
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp testResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func enter(t *testing.T, h http.Handler, plate, vehicleType string) TicketResponse {
	t.Helper()

	rec, resp := do(t, h, http.MethodPost, "/api/parking/entry", EntryRequest{LicensePlate: plate, VehicleType: vehicleType})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)

	var ticket TicketResponse
	require.NoError(t, json.Unmarshal(resp.Data, &ticket))
	return ticket
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{FourWheel: 1})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "parking-lot-test", health.Service)
	require.NotNil(t, health.Meta)
	assert.Equal(t, "req-123", health.Meta.RequestID)
}

func TestEntryAndExit(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{FourWheel: 1})

	ticket := enter(t, h, "KA01HH1234", "car")
	assert.Equal(t, "S-C-1", ticket.SpotID)
	assert.Equal(t, "FOUR_WHEEL", ticket.VehicleType)
	assert.False(t, ticket.Settled)
	assert.Nil(t, ticket.SettledAt)

	rec, resp := do(t, h, http.MethodPost, "/api/parking/entry", EntryRequest{LicensePlate: "KA01HH9999", VehicleType: "FOUR_WHEEL"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)

	rec, resp = do(t, h, http.MethodPost, "/api/parking/exit", ExitRequest{TicketID: ticket.TicketID})
	require.Equal(t, http.StatusOK, rec.Code, resp.Error)

	var settled TicketResponse
	require.NoError(t, json.Unmarshal(resp.Data, &settled))
	assert.True(t, settled.Settled)
	assert.Equal(t, 10.0, settled.Fee)
	assert.NotNil(t, settled.SettledAt)

	rec, _ = do(t, h, http.MethodPost, "/api/parking/exit", ExitRequest{TicketID: ticket.TicketID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/parking/exit", ExitRequest{TicketID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntryValidation(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{FourWheel: 1})

	cases := []struct {
		name string
		body any
	}{
		{"malformed body", "{not json"},
		{"missing plate", EntryRequest{VehicleType: "car"}},
		{"blank plate", EntryRequest{LicensePlate: "   ", VehicleType: "car"}},
		{"missing type", EntryRequest{LicensePlate: "KA01HH1234"}},
		{"unknown type", EntryRequest{LicensePlate: "KA01HH1234", VehicleType: "boat"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := do(t, h, http.MethodPost, "/api/parking/entry", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}

	rec, _ := do(t, h, http.MethodPost, "/api/parking/exit", ExitRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSamePlateEntersUntilCapacity(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{FourWheel: 2})

	first := enter(t, h, "KA01HH1234", "car")
	second := enter(t, h, "KA01HH1234", "car")
	assert.Equal(t, "S-C-1", first.SpotID)
	assert.Equal(t, "S-C-2", second.SpotID)

	rec, _ := do(t, h, http.MethodPost, "/api/parking/entry", EntryRequest{LicensePlate: "KA01HH1234", VehicleType: "car"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetTicket(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{TwoWheel: 1})

	ticket := enter(t, h, "BIKE-1", "bike")

	rec, resp := do(t, h, http.MethodGet, "/api/parking/tickets/"+ticket.TicketID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got TicketResponse
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, ticket.TicketID, got.TicketID)
	assert.Equal(t, "S-B-1", got.SpotID)

	rec, _ = do(t, h, http.MethodGet, "/api/parking/tickets/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStatus(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{TwoWheel: 1, FourWheel: 2, Oversize: 1})

	enter(t, h, "KA01HH1234", "car")
	enter(t, h, "TRUCK-1", "truck")

	rec, resp := do(t, h, http.MethodGet, "/api/parking/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.Equal(t, 4, status.Capacity)
	assert.Equal(t, 2, status.Occupied)
	assert.Equal(t, 2, status.Available)
	assert.Equal(t, 2, status.OpenTickets)
	assert.Equal(t, 10.0, status.RatePerHour)
	require.Len(t, status.Classes, 3)
	assert.Equal(t, ClassStatus{VehicleType: "FOUR_WHEEL", Capacity: 2, Occupied: 1, Available: 1}, status.Classes[1])
	require.Len(t, status.Spots, 4)
	assert.Equal(t, SpotStatus{SpotID: "S-L-1", VehicleType: "OVERSIZE", LicensePlate: "TRUCK-1", Occupied: true}, status.Spots[3])
}

func TestFindByLicensePlate(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{FourWheel: 2})

	enter(t, h, "KA01HH1234", "car")

	rec, resp := do(t, h, http.MethodGet, "/api/parking/find/KA01HH1234", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var found FindVehicleResponse
	require.NoError(t, json.Unmarshal(resp.Data, &found))
	assert.Equal(t, FindVehicleResponse{SpotID: "S-C-1", LicensePlate: "KA01HH1234", VehicleType: "FOUR_WHEEL"}, found)

	rec, resp = do(t, h, http.MethodGet, "/api/parking/find/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Vehicle not found", resp.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{FourWheel: 2})

	enter(t, h, "KA01HH1234", "car")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `parking_spots_occupied{vehicle_type="FOUR_WHEEL"} 1`)
	assert.Contains(t, body, "parking_tickets_open 1")
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t, parking.Inventory{FourWheel: 1})

	req := httptest.NewRequest(http.MethodOptions, "/api/parking/entry", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetAddress(t *testing.T) {
	engine, err := parking.NewEngine(parking.Inventory{FourWheel: 1}, 10)
	require.NoError(t, err)
	service, err := parking.NewInstrumentedEngine(engine,
		parking.NewTelemetryProviderFrom(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider()))
	require.NoError(t, err)

	srv := NewServer("9090", service, "parking-lot-test", prometheus.NewRegistry())
	assert.Equal(t, "http://localhost:9090", srv.GetAddress())
}
