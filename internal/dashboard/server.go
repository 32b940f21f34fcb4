// v3
// internal/dashboard/server.go
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/abixb/severless-data-pipeline-AWS/internal/config"
	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// reader is the store surface the handlers need; *Store satisfies it.
type reader interface {
	RecentReadings(ctx context.Context, limit int, deviceID string) ([]telemetry.Reading, error)
	Devices(ctx context.Context) ([]DeviceSummary, error)
	Series(ctx context.Context, kind string, limit int) ([]SeriesPoint, error)
}

// Server wires the store, the response cache and the HTTP routes.
type Server struct {
	log   *slog.Logger
	store reader
	cache *Cache
	cfg   config.Dashboard
	start time.Time
}

// NewServer builds the dashboard API. cache may be nil.
func NewServer(log *slog.Logger, store reader, cache *Cache, cfg config.Dashboard) *Server {
	return &Server{log: log, store: store, cache: cache, cfg: cfg, start: time.Now()}
}

// Router assembles the route table wrapped with request logging and
// permissive CORS so browser front-ends can consume the API directly.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/readings", s.handleReadings).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	api.HandleFunc("/kinds/{kind}/series", s.handleSeries).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)
	s.log.Info("http routes registered")
	return handlers.CombinedLoggingHandler(os.Stdout, cors(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	limit, err := s.limitParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	device := r.URL.Query().Get("device")

	key := fmt.Sprintf("dash:readings:%d:%s", limit, device)
	s.cached(w, r, key, func(ctx context.Context) (any, error) {
		readings, err := s.store.RecentReadings(ctx, limit, device)
		if err != nil {
			return nil, err
		}
		return map[string]any{"data": readings, "count": len(readings)}, nil
	})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, "dash:devices", func(ctx context.Context) (any, error) {
		devices, err := s.store.Devices(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"data": devices, "count": len(devices)}, nil
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	if _, ok := telemetry.Profile(kind); !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown sensor kind %q", kind))
		return
	}
	limit, err := s.limitParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	key := fmt.Sprintf("dash:series:%s:%d", kind, limit)
	s.cached(w, r, key, func(ctx context.Context) (any, error) {
		points, err := s.store.Series(ctx, kind, limit)
		if err != nil {
			return nil, err
		}
		prof, _ := telemetry.Profile(kind)
		return map[string]any{"kind": kind, "unit": prof.Unit, "data": points, "count": len(points)}, nil
	})
}

// KindSummary aggregates recent values of one kind.
type KindSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Unit  string  `json:"unit"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	limit, err := s.limitParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	key := fmt.Sprintf("dash:summary:%d", limit)
	s.cached(w, r, key, func(ctx context.Context) (any, error) {
		readings, err := s.store.RecentReadings(ctx, limit, "")
		if err != nil {
			return nil, err
		}
		return map[string]any{"data": summarize(readings), "sampled": len(readings)}, nil
	})
}

// summarize folds per-kind stats over the sampled readings. Readings
// that never carried a kind simply do not contribute to it.
func summarize(readings []telemetry.Reading) map[string]KindSummary {
	out := make(map[string]KindSummary)
	sums := make(map[string]float64)
	for _, r := range readings {
		for kind, m := range r.Readings {
			agg, seen := out[kind]
			if !seen {
				agg = KindSummary{Min: m.Value, Max: m.Value, Unit: m.Unit}
			}
			if m.Value < agg.Min {
				agg.Min = m.Value
			}
			if m.Value > agg.Max {
				agg.Max = m.Value
			}
			agg.Count++
			sums[kind] += m.Value
			out[kind] = agg
		}
	}
	for kind, agg := range out {
		agg.Avg = sums[kind] / float64(agg.Count)
		out[kind] = agg
	}
	return out
}

// cached serves from the response cache when possible, otherwise runs
// fn, stores the result and serves it. Cache trouble degrades to a
// direct query.
func (s *Server) cached(w http.ResponseWriter, r *http.Request, key string, fn func(ctx context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if body, ok := s.cache.Get(ctx, key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	payload, err := fn(ctx)
	if err != nil {
		s.log.Error("query failed", "key", key, "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.cache.Set(ctx, key, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.cfg.QueryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if n > s.cfg.MaxQueryLimit {
		n = s.cfg.MaxQueryLimit
	}
	return n, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
