// v1
// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abixb/severless-data-pipeline-AWS/internal/sink"
)

func TestLoadGeneratorDefaults(t *testing.T) {
	t.Setenv(defaultPropsEnv, filepath.Join(t.TempDir(), "absent.properties"))

	cfg, err := LoadGenerator()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DeviceCount != 10 {
		t.Fatalf("device count %d, want 10", cfg.DeviceCount)
	}
	if cfg.TickInterval != time.Second {
		t.Fatalf("tick interval %s, want 1s", cfg.TickInterval)
	}
	if cfg.TickLimit != 0 {
		t.Fatalf("tick limit %d, want 0 (unbounded)", cfg.TickLimit)
	}
	if cfg.ExportFormat != sink.FormatStructured {
		t.Fatalf("export format %q, want structured", cfg.ExportFormat)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("streaming enabled by default: %v", cfg.KafkaBrokers)
	}
}

func TestLoadGeneratorFromEnvironment(t *testing.T) {
	t.Setenv(defaultPropsEnv, filepath.Join(t.TempDir(), "absent.properties"))
	t.Setenv("DEVICE_COUNT", "25")
	t.Setenv("TICK_INTERVAL", "0.5")
	t.Setenv("TICK_LIMIT", "100")
	t.Setenv("EXPORT_PATH", "/tmp/out.csv")
	t.Setenv("EXPORT_FORMAT", "tabular")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("SEED", "42")
	t.Setenv("FLUSH_TIMEOUT", "3s")

	cfg, err := LoadGenerator()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DeviceCount != 25 || cfg.TickLimit != 100 || cfg.Seed != 42 {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if cfg.TickInterval != 500*time.Millisecond {
		t.Fatalf("tick interval %s, want 500ms", cfg.TickInterval)
	}
	if cfg.ExportFormat != sink.FormatTabular || cfg.ExportPath != "/tmp/out.csv" {
		t.Fatalf("export settings not applied: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-2:9092" {
		t.Fatalf("broker list not split: %v", cfg.KafkaBrokers)
	}
	if cfg.FlushTimeout != 3*time.Second {
		t.Fatalf("flush timeout %s, want 3s", cfg.FlushTimeout)
	}
}

func TestLoadGeneratorFromProperties(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generator.properties")
	props := "# fleet setup\ndevice_count=7\ntick_interval_seconds=2\nexport_format=tabular\n"
	if err := os.WriteFile(path, []byte(props), 0644); err != nil {
		t.Fatalf("write properties: %v", err)
	}
	t.Setenv(defaultPropsEnv, path)
	// environment outranks the properties file
	t.Setenv("DEVICE_COUNT", "3")

	cfg, err := LoadGenerator()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DeviceCount != 3 {
		t.Fatalf("env should outrank properties: got %d", cfg.DeviceCount)
	}
	if cfg.TickInterval != 2*time.Second {
		t.Fatalf("properties value not applied: %s", cfg.TickInterval)
	}
	if cfg.ExportFormat != sink.FormatTabular {
		t.Fatalf("properties format not applied: %q", cfg.ExportFormat)
	}
}

func TestLoadGeneratorRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero devices", key: "DEVICE_COUNT", value: "0"},
		{name: "garbage devices", key: "DEVICE_COUNT", value: "many"},
		{name: "negative interval", key: "TICK_INTERVAL", value: "-1"},
		{name: "unknown format", key: "EXPORT_FORMAT", value: "parquet"},
		{name: "negative tick limit", key: "TICK_LIMIT", value: "-5"},
		{name: "garbage flush timeout", key: "FLUSH_TIMEOUT", value: "soon"},
		{name: "negative flush timeout", key: "FLUSH_TIMEOUT", value: "-2s"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(defaultPropsEnv, filepath.Join(t.TempDir(), "absent.properties"))
			t.Setenv(tc.key, tc.value)
			if _, err := LoadGenerator(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoadDashboardRequiresStore(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")
	if _, err := LoadDashboard(); err == nil {
		t.Fatalf("expected error without POSTGRES_URL")
	}

	t.Setenv("POSTGRES_URL", "postgres://localhost/iot")
	cfg, err := LoadDashboard()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != ":8087" || cfg.CacheTTL != 60*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadDashboardTimeoutsFromEnvironment(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/iot")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("WRITE_TIMEOUT", "30s")
	t.Setenv("SHUTDOWN_TIMEOUT", "8s")
	t.Setenv("MAX_QUERY_LIMIT", "500")

	cfg, err := LoadDashboard()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ReadTimeout != 2*time.Second || cfg.WriteTimeout != 30*time.Second || cfg.ShutdownTimeout != 8*time.Second {
		t.Fatalf("timeouts not applied: %+v", cfg)
	}
	if cfg.MaxQueryLimit != 500 {
		t.Fatalf("max query limit %d, want 500", cfg.MaxQueryLimit)
	}

	t.Setenv("READ_TIMEOUT", "-1s")
	if _, err := LoadDashboard(); err == nil {
		t.Fatalf("expected error for negative read timeout")
	}
}
