// v1
// internal/sink/mqtt.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// MQTTSink publishes each reading to <prefix>/<device_id> at QoS 0.
type MQTTSink struct {
	log    *slog.Logger
	client mqtt.Client
	prefix string
}

// NewMQTTSink connects to the broker (e.g. tcp://localhost:1883) and
// fails fast when it is unreachable.
func NewMQTTSink(log *slog.Logger, broker, topicPrefix string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID("fleet-generator")
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Info("mqtt sink ready", "broker", broker, "topicPrefix", topicPrefix)
	return &MQTTSink{log: log, client: c, prefix: topicPrefix}, nil
}

func (s *MQTTSink) Name() string { return "mqtt" }

// Publish delivers readings one by one; individual rejections are
// counted and logged so one bad publish never drops the whole batch.
func (s *MQTTSink) Publish(ctx context.Context, batch telemetry.Batch) error {
	failed := 0
	for _, r := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(r)
		if err != nil {
			failed++
			continue
		}
		token := s.client.Publish(s.prefix+"/"+r.DeviceID, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			failed++
		}
	}
	if failed > 0 {
		s.log.Warn("partial batch delivery", "sink", s.Name(), "failed", failed, "total", len(batch))
	}
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
