// v1
// internal/dashboard/server_test.go
package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abixb/severless-data-pipeline-AWS/internal/config"
	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

type stubStore struct {
	readings []telemetry.Reading
	devices  []DeviceSummary
	series   []SeriesPoint
	err      error
}

func (s *stubStore) RecentReadings(_ context.Context, limit int, deviceID string) ([]telemetry.Reading, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := s.readings
	if deviceID != "" {
		out = nil
		for _, r := range s.readings {
			if r.DeviceID == deviceID {
				out = append(out, r)
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubStore) Devices(context.Context) ([]DeviceSummary, error) {
	return s.devices, s.err
}

func (s *stubStore) Series(_ context.Context, kind string, limit int) ([]SeriesPoint, error) {
	return s.series, s.err
}

func newTestServer(store *stubStore) *Server {
	cfg := config.Dashboard{QueryLimit: 200, MaxQueryLimit: 2000}
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), store, nil, cfg)
}

func stubReadings() []telemetry.Reading {
	ts := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	return []telemetry.Reading{
		{
			DeviceID: "device_aaaa0001", Timestamp: ts,
			LocationID: "warehouse_a", LocationName: "Warehouse A",
			Readings: map[string]telemetry.Measurement{
				"temperature": {Value: 20.0, Unit: "°C"},
				"humidity":    {Value: 50.0, Unit: "%"},
			},
			Status: telemetry.StatusOperational,
		},
		{
			DeviceID: "device_bbbb0002", Timestamp: ts,
			LocationID: "office_main", LocationName: "Main Office",
			Readings: map[string]telemetry.Measurement{
				"temperature": {Value: 24.0, Unit: "°C"},
			},
			Status: telemetry.StatusOperational,
		},
	}
}

func doGET(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandleReadings(t *testing.T) {
	srv := newTestServer(&stubStore{readings: stubReadings()})
	router := srv.Router()

	rr := doGET(t, router, "/api/v1/readings")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rr.Code)
	}
	var body struct {
		Data  []telemetry.Reading `json:"data"`
		Count int                 `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if body.Count != 2 || len(body.Data) != 2 {
		t.Fatalf("got %d readings, want 2", body.Count)
	}
	// record missing a kind decodes without error and without the key
	if _, ok := body.Data[1].Readings["humidity"]; ok {
		t.Fatalf("absent kind materialized in response")
	}
}

func TestHandleReadingsDeviceFilter(t *testing.T) {
	srv := newTestServer(&stubStore{readings: stubReadings()})
	rr := doGET(t, srv.Router(), "/api/v1/readings?device=device_bbbb0002")
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("filtered count %d, want 1", body.Count)
	}
}

func TestHandleReadingsRejectsBadLimit(t *testing.T) {
	srv := newTestServer(&stubStore{})
	rr := doGET(t, srv.Router(), "/api/v1/readings?limit=banana")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestHandleSeriesUnknownKind(t *testing.T) {
	srv := newTestServer(&stubStore{})
	rr := doGET(t, srv.Router(), "/api/v1/kinds/wind_speed/series")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rr.Code)
	}
}

func TestHandleSummarySkipsMissingKinds(t *testing.T) {
	srv := newTestServer(&stubStore{readings: stubReadings()})
	rr := doGET(t, srv.Router(), "/api/v1/summary")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rr.Code)
	}
	var body struct {
		Data    map[string]KindSummary `json:"data"`
		Sampled int                    `json:"sampled"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	temp := body.Data["temperature"]
	if temp.Count != 2 || temp.Min != 20.0 || temp.Max != 24.0 || temp.Avg != 22.0 {
		t.Fatalf("temperature summary wrong: %+v", temp)
	}
	hum := body.Data["humidity"]
	if hum.Count != 1 || hum.Avg != 50.0 {
		t.Fatalf("humidity summary should count only carriers: %+v", hum)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubStore{})
	rr := doGET(t, srv.Router(), "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rr.Code)
	}
}
