// v1
// internal/sink/influx.go
package sink

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// InfluxSink writes one point per reading to the "environment"
// measurement, tagged by device and location with one field per kind.
type InfluxSink struct {
	log    *slog.Logger
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

// NewInfluxSink builds a blocking-write client for the given server.
func NewInfluxSink(log *slog.Logger, url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClient(url, token)
	write := client.WriteAPIBlocking(org, bucket)
	log.Info("influx sink ready", "url", url, "org", org, "bucket", bucket)
	return &InfluxSink{log: log, client: client, write: write}
}

func (s *InfluxSink) Name() string { return "influx" }

// Publish writes points one by one, counting and logging rejections.
func (s *InfluxSink) Publish(ctx context.Context, batch telemetry.Batch) error {
	failed := 0
	for _, r := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields := map[string]interface{}{
			"latitude":  r.Coordinates.Latitude,
			"longitude": r.Coordinates.Longitude,
		}
		for kind, m := range r.Readings {
			fields[kind] = m.Value
		}
		point := influxdb2.NewPoint(
			"environment",
			map[string]string{
				"device_id":   r.DeviceID,
				"location_id": r.LocationID,
				"status":      r.Status,
			},
			fields,
			r.Timestamp,
		)
		if err := s.write.WritePoint(ctx, point); err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.log.Warn("partial batch delivery", "sink", s.Name(), "failed", failed, "total", len(batch))
	}
	return nil
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
