// v2
// internal/sink/postgres.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

var readingsSchemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS sensor_readings (
    id            BIGSERIAL PRIMARY KEY,
    device_id     TEXT NOT NULL,
    ts            TIMESTAMPTZ NOT NULL,
    location_id   TEXT NOT NULL,
    location_name TEXT NOT NULL,
    latitude      DOUBLE PRECISION NOT NULL,
    longitude     DOUBLE PRECISION NOT NULL,
    status        TEXT NOT NULL,
    readings      JSONB NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS sensor_readings_ts_idx ON sensor_readings (ts DESC)`,
	`CREATE INDEX IF NOT EXISTS sensor_readings_device_idx ON sensor_readings (device_id, ts DESC)`,
}

const insertReadingSQL = `
INSERT INTO sensor_readings
    (device_id, ts, location_id, location_name, latitude, longitude, status, readings)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// PostgresSink persists readings to the store the dashboard reads. The
// nested kind map goes into a JSONB column so records with different
// kind subsets coexist without schema churn.
type PostgresSink struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

// NewPostgresSink connects, pings and ensures the readings table exists.
func NewPostgresSink(ctx context.Context, log *slog.Logger, databaseURL string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	for _, stmt := range readingsSchemaSQL {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure readings schema: %w", err)
		}
	}
	log.Info("postgres sink ready")
	return &PostgresSink{log: log, pool: pool}, nil
}

func (s *PostgresSink) Name() string { return "postgres" }

// Publish inserts one row per reading. Failed rows are counted and
// logged; accepted rows stay committed.
func (s *PostgresSink) Publish(ctx context.Context, batch telemetry.Batch) error {
	failed := 0
	for _, r := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(r.Readings)
		if err != nil {
			failed++
			continue
		}
		_, err = s.pool.Exec(ctx, insertReadingSQL,
			r.DeviceID, r.Timestamp, r.LocationID, r.LocationName,
			r.Coordinates.Latitude, r.Coordinates.Longitude, r.Status, payload)
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.log.Warn("partial batch delivery", "sink", s.Name(), "failed", failed, "total", len(batch))
	}
	return nil
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
