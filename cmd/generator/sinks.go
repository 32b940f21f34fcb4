// v1
// cmd/generator/sinks.go
package main

import (
	"context"
	"log/slog"

	"github.com/abixb/severless-data-pipeline-AWS/internal/config"
	"github.com/abixb/severless-data-pipeline-AWS/internal/sink"
)

// buildSinks assembles the delivery targets the configuration enables.
// A run with no targets at all still works: batches are generated and
// logged, which is the dry-run mode.
func buildSinks(ctx context.Context, logger *slog.Logger, cfg config.Generator) ([]sink.Sink, *sink.Archive, error) {
	var sinks []sink.Sink

	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, sink.NewKafkaSink(logger, cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	if cfg.MQTTBroker != "" {
		s, err := sink.NewMQTTSink(logger, cfg.MQTTBroker, cfg.MQTTTopicPrefix)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.PostgresURL != "" {
		s, err := sink.NewPostgresSink(ctx, logger, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.InfluxURL != "" {
		sinks = append(sinks, sink.NewInfluxSink(logger, cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}

	var archive *sink.Archive
	if cfg.ExportPath != "" {
		archive = sink.NewArchive(logger, cfg.ExportPath, cfg.ExportFormat)
	}
	return sinks, archive, nil
}
