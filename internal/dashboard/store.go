// v2
// internal/dashboard/store.go

// Package dashboard is the read side: it queries the persisted readings
// store, reconstructs the emitted record schema and serves it over HTTP
// with short-lived response caching.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// Store wraps database access for the dashboard queries. The driver
// hands back numeric columns as numbers and ts as a timestamp, so no
// recursive value coercion happens here.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects a pgx pool to the readings store.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const recentReadingsSQL = `
    SELECT device_id, ts, location_id, location_name, latitude, longitude, status, readings
    FROM sensor_readings
    WHERE ($2 = '' OR device_id = $2)
    ORDER BY ts DESC
    LIMIT $1
`

// RecentReadings returns up to limit recent readings, newest first,
// optionally filtered to one device. Records missing optional kinds are
// returned as-is: an absent kind is an absent map key, never an error.
func (s *Store) RecentReadings(ctx context.Context, limit int, deviceID string) ([]telemetry.Reading, error) {
	rows, err := s.pool.Query(ctx, recentReadingsSQL, limit, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]telemetry.Reading, 0)
	for rows.Next() {
		var (
			r       telemetry.Reading
			payload []byte
		)
		if err := rows.Scan(
			&r.DeviceID,
			&r.Timestamp,
			&r.LocationID,
			&r.LocationName,
			&r.Coordinates.Latitude,
			&r.Coordinates.Longitude,
			&r.Status,
			&payload,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &r.Readings); err != nil {
			return nil, fmt.Errorf("decode readings for %s: %w", r.DeviceID, err)
		}
		r.Timestamp = r.Timestamp.UTC()
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// DeviceSummary is the latest known state of one device.
type DeviceSummary struct {
	DeviceID     string    `json:"device_id"`
	LastSeen     time.Time `json:"last_seen"`
	LocationID   string    `json:"location_id"`
	LocationName string    `json:"location_name"`
	Status       string    `json:"status"`
	Kinds        []string  `json:"kinds"`
}

const devicesSQL = `
    SELECT DISTINCT ON (device_id)
        device_id, ts, location_id, location_name, status, readings
    FROM sensor_readings
    ORDER BY device_id, ts DESC
`

// Devices returns the latest record per known device.
func (s *Store) Devices(ctx context.Context) ([]DeviceSummary, error) {
	rows, err := s.pool.Query(ctx, devicesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := make([]DeviceSummary, 0)
	for rows.Next() {
		var (
			d       DeviceSummary
			payload []byte
		)
		if err := rows.Scan(&d.DeviceID, &d.LastSeen, &d.LocationID, &d.LocationName, &d.Status, &payload); err != nil {
			return nil, err
		}
		var m map[string]telemetry.Measurement
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("decode readings for %s: %w", d.DeviceID, err)
		}
		d.LastSeen = d.LastSeen.UTC()
		d.Kinds = kindsInRegistryOrder(m)
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// SeriesPoint is one charted sample of a single kind.
type SeriesPoint struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

const seriesSQL = `
    SELECT device_id, ts, (readings -> $1 ->> 'value')::double precision
    FROM sensor_readings
    WHERE readings ? $1
    ORDER BY ts DESC
    LIMIT $2
`

// Series returns recent values of a single kind, newest first. Rows
// that never recorded the kind are excluded by the query.
func (s *Store) Series(ctx context.Context, kind string, limit int) ([]SeriesPoint, error) {
	if _, ok := telemetry.Profile(kind); !ok {
		return nil, fmt.Errorf("unknown sensor kind %q", kind)
	}
	rows, err := s.pool.Query(ctx, seriesSQL, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]SeriesPoint, 0)
	for rows.Next() {
		var p SeriesPoint
		if err := rows.Scan(&p.DeviceID, &p.Timestamp, &p.Value); err != nil {
			return nil, err
		}
		p.Timestamp = p.Timestamp.UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

func kindsInRegistryOrder(m map[string]telemetry.Measurement) []string {
	out := make([]string, 0, len(m))
	for _, k := range telemetry.Kinds() {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
