// v2
// internal/config/config.go

// Package config resolves runtime settings by layering defaults, an
// optional properties file and environment variables, in that order.
// A local .env file is honoured when present so the binaries boot with
// minimal setup.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abixb/severless-data-pipeline-AWS/internal/sink"
)

// Generator captures all runtime settings of the fleet generator.
type Generator struct {
	// DeviceCount is the number of simulated devices.
	DeviceCount int
	// TickInterval is the pause between generation cycles.
	TickInterval time.Duration
	// TickLimit caps the number of cycles; 0 means unbounded.
	TickLimit int
	// Seed makes runs reproducible; 0 derives a seed from the clock.
	Seed int64
	// FlushTimeout bounds the final export flush at shutdown.
	FlushTimeout time.Duration

	// ExportPath is the bulk export target; empty disables export.
	ExportPath string
	// ExportFormat selects the export serialization.
	ExportFormat sink.Format

	// KafkaBrokers/KafkaTopic configure the streaming sink; no brokers
	// means no streaming.
	KafkaBrokers []string
	KafkaTopic   string

	// MQTTBroker/MQTTTopicPrefix configure the MQTT sink; empty broker
	// disables it.
	MQTTBroker      string
	MQTTTopicPrefix string

	// PostgresURL enables the persisted store the dashboard reads.
	PostgresURL string

	// Influx* enable the time-series sink; empty URL disables it.
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	// LogPath tees log output to a file when set.
	LogPath string
}

const (
	defaultDeviceCount  = 10
	defaultTickInterval = time.Second
	defaultFlushTimeout = 10 * time.Second
	defaultKafkaTopic   = "iot.readings"
	defaultMQTTPrefix   = "sensors/readings"
	defaultPropsEnv     = "GENERATOR_PROPERTIES_PATH"
	defaultPropsPath    = "generator.properties"
)

// LoadGenerator resolves the generator configuration. The properties
// file location can be overridden with GENERATOR_PROPERTIES_PATH; a
// missing file is not an error.
func LoadGenerator() (Generator, error) {
	_ = godotenv.Load()

	cfg := Generator{
		DeviceCount:     defaultDeviceCount,
		TickInterval:    defaultTickInterval,
		FlushTimeout:    defaultFlushTimeout,
		ExportFormat:    sink.FormatStructured,
		KafkaTopic:      defaultKafkaTopic,
		MQTTTopicPrefix: defaultMQTTPrefix,
	}

	props, err := loadOptionalProps(envOr(defaultPropsEnv, defaultPropsPath))
	if err != nil {
		return Generator{}, err
	}

	get := layered(props)

	if v := get("device_count", "DEVICE_COUNT"); v != "" {
		cfg.DeviceCount, err = parseInt("device_count", v)
		if err != nil {
			return Generator{}, err
		}
	}
	if v := get("tick_interval_seconds", "TICK_INTERVAL"); v != "" {
		secs, err := parseFloat("tick_interval_seconds", v)
		if err != nil {
			return Generator{}, err
		}
		cfg.TickInterval = time.Duration(secs * float64(time.Second))
	}
	if v := get("tick_limit", "TICK_LIMIT"); v != "" {
		cfg.TickLimit, err = parseInt("tick_limit", v)
		if err != nil {
			return Generator{}, err
		}
	}
	if v := get("seed", "SEED"); v != "" {
		cfg.Seed, err = parseInt64("seed", v)
		if err != nil {
			return Generator{}, err
		}
	}
	if v := get("flush_timeout", "FLUSH_TIMEOUT"); v != "" {
		cfg.FlushTimeout, err = parseDuration("flush_timeout", v)
		if err != nil {
			return Generator{}, err
		}
	}
	if v := get("export_path", "EXPORT_PATH"); v != "" {
		cfg.ExportPath = v
	}
	if v := get("export_format", "EXPORT_FORMAT"); v != "" {
		cfg.ExportFormat, err = sink.ParseFormat(v)
		if err != nil {
			return Generator{}, err
		}
	}
	if v := get("stream_target", "KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = splitAndTrim(v)
	}
	if v := get("kafka_topic", "KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
	if v := get("mqtt_broker", "MQTT_BROKER"); v != "" {
		cfg.MQTTBroker = v
	}
	if v := get("mqtt_topic_prefix", "MQTT_TOPIC_PREFIX"); v != "" {
		cfg.MQTTTopicPrefix = v
	}
	if v := get("postgres_url", "POSTGRES_URL"); v != "" {
		cfg.PostgresURL = v
	}
	if v := get("influx_url", "INFLUX_URL"); v != "" {
		cfg.InfluxURL = v
	}
	if v := get("influx_token", "INFLUX_TOKEN"); v != "" {
		cfg.InfluxToken = v
	}
	if v := get("influx_org", "INFLUX_ORG"); v != "" {
		cfg.InfluxOrg = v
	}
	if v := get("influx_bucket", "INFLUX_BUCKET"); v != "" {
		cfg.InfluxBucket = v
	}
	if v := get("log_path", "LOG_PATH"); v != "" {
		cfg.LogPath = v
	}

	return cfg, cfg.validate()
}

func (c Generator) validate() error {
	if c.DeviceCount <= 0 {
		return fmt.Errorf("device_count must be positive, got %d", c.DeviceCount)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval_seconds must be positive, got %s", c.TickInterval)
	}
	if c.TickLimit < 0 {
		return fmt.Errorf("tick_limit must not be negative, got %d", c.TickLimit)
	}
	if c.FlushTimeout <= 0 {
		return fmt.Errorf("flush_timeout must be positive, got %s", c.FlushTimeout)
	}
	if c.InfluxURL != "" && (c.InfluxOrg == "" || c.InfluxBucket == "") {
		return fmt.Errorf("influx_url set but influx_org/influx_bucket missing")
	}
	return nil
}

// Dashboard captures the read-side API settings.
type Dashboard struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string
	// PostgresURL points at the persisted readings store.
	PostgresURL string
	// RedisAddr enables response caching when set.
	RedisAddr string
	// CacheTTL bounds how stale a cached response may be.
	CacheTTL time.Duration
	// QueryLimit is the default row bound; MaxQueryLimit the hard cap.
	QueryLimit    int
	MaxQueryLimit int
	// HTTP server timeouts.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// LogPath tees log output to a file when set.
	LogPath string
}

const (
	defaultListenAddr    = ":8087"
	defaultCacheTTL      = 60 * time.Second
	defaultQueryLimit    = 200
	defaultMaxQueryLimit = 2000
	defaultReadTimeout   = 5 * time.Second
	defaultWriteTimeout  = 15 * time.Second
	defaultShutdown      = 5 * time.Second
)

// LoadDashboard resolves the dashboard configuration from the
// environment. POSTGRES_URL is required; everything else has defaults.
func LoadDashboard() (Dashboard, error) {
	_ = godotenv.Load()

	cfg := Dashboard{
		ListenAddr:      envOr("LISTEN_ADDR", defaultListenAddr),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CacheTTL:        defaultCacheTTL,
		QueryLimit:      defaultQueryLimit,
		MaxQueryLimit:   defaultMaxQueryLimit,
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		ShutdownTimeout: defaultShutdown,
		LogPath:         os.Getenv("LOG_PATH"),
	}
	if cfg.PostgresURL == "" {
		return Dashboard{}, fmt.Errorf("POSTGRES_URL is required")
	}

	var err error
	if v := os.Getenv("CACHE_TTL"); v != "" {
		cfg.CacheTTL, err = parseDuration("CACHE_TTL", v)
		if err != nil {
			return Dashboard{}, err
		}
	}
	if v := os.Getenv("QUERY_LIMIT"); v != "" {
		cfg.QueryLimit, err = parseInt("QUERY_LIMIT", v)
		if err != nil {
			return Dashboard{}, err
		}
	}
	if v := os.Getenv("MAX_QUERY_LIMIT"); v != "" {
		cfg.MaxQueryLimit, err = parseInt("MAX_QUERY_LIMIT", v)
		if err != nil {
			return Dashboard{}, err
		}
	}
	if cfg.MaxQueryLimit <= 0 {
		return Dashboard{}, fmt.Errorf("MAX_QUERY_LIMIT must be positive, got %d", cfg.MaxQueryLimit)
	}
	if cfg.QueryLimit <= 0 || cfg.QueryLimit > cfg.MaxQueryLimit {
		return Dashboard{}, fmt.Errorf("QUERY_LIMIT out of range (0, %d]: %d", cfg.MaxQueryLimit, cfg.QueryLimit)
	}
	if v := os.Getenv("READ_TIMEOUT"); v != "" {
		cfg.ReadTimeout, err = parseDuration("READ_TIMEOUT", v)
		if err != nil {
			return Dashboard{}, err
		}
	}
	if v := os.Getenv("WRITE_TIMEOUT"); v != "" {
		cfg.WriteTimeout, err = parseDuration("WRITE_TIMEOUT", v)
		if err != nil {
			return Dashboard{}, err
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", v)
		if err != nil {
			return Dashboard{}, err
		}
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return Dashboard{}, fmt.Errorf("HTTP timeouts must be positive")
	}
	return cfg, nil
}

// layered returns a getter that prefers the environment variable and
// falls back to the properties key.
func layered(props map[string]string) func(propKey, envKey string) string {
	return func(propKey, envKey string) string {
		if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
			return v
		}
		return strings.TrimSpace(props[propKey])
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
