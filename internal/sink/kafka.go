// v2
// internal/sink/kafka.go
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// KafkaSink streams readings to a Kafka topic, keyed by device id so
// downstream consumers see per-device ordering.
type KafkaSink struct {
	log *slog.Logger
	w   *kafka.Writer
}

// NewKafkaSink builds a writer for the given brokers and topic.
func NewKafkaSink(log *slog.Logger, brokers []string, topic string) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	log.Info("kafka sink ready", "topic", topic, "brokers", brokers)
	return &KafkaSink{log: log, w: w}
}

func (s *KafkaSink) Name() string { return "kafka" }

// Publish writes the batch in one call. Rejected records do not stop the
// loop: partial write failures are counted and logged, and the accepted
// records stand.
func (s *KafkaSink) Publish(ctx context.Context, batch telemetry.Batch) error {
	if len(batch) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(batch))
	for _, r := range batch {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal reading %s: %w", r.DeviceID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.DeviceID), Value: b, Time: r.Timestamp})
	}

	err := s.w.WriteMessages(ctx, msgs...)
	if err == nil {
		s.log.Info("published batch", "sink", s.Name(), "records", len(msgs))
		return nil
	}

	var werrs kafka.WriteErrors
	if errors.As(err, &werrs) {
		failed := 0
		for _, we := range werrs {
			if we != nil {
				failed++
			}
		}
		s.log.Warn("partial batch delivery", "sink", s.Name(), "failed", failed, "total", len(msgs))
		return nil
	}
	return fmt.Errorf("kafka write: %w", err)
}

func (s *KafkaSink) Close() error {
	return s.w.Close()
}
