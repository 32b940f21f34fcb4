// v1
// internal/sink/sink.go

// Package sink contains the delivery adapters the emission loop hands
// each generated batch to: streaming targets (Kafka, MQTT), persistence
// targets (Postgres, InfluxDB) and the in-memory archive that backs the
// bulk export at shutdown.
package sink

import (
	"context"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// Sink delivers one generated batch to a downstream system. Streaming
// sinks must tolerate partial-batch failure: deliver what they can,
// log a failure count and return nil so the loop keeps ticking. A
// returned error means the whole batch was lost; the loop logs it and
// continues either way.
type Sink interface {
	Name() string
	Publish(ctx context.Context, batch telemetry.Batch) error
	Close() error
}
