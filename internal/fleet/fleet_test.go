// v1
// internal/fleet/fleet_test.go
package fleet

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(testLogger(), Config{DeviceCount: 0}); err == nil {
		t.Fatalf("expected error for zero device count")
	}
	if _, err := New(testLogger(), Config{DeviceCount: 1, MinKinds: 4, MaxKinds: 2}); err == nil {
		t.Fatalf("expected error for inverted kind bounds")
	}
	if _, err := New(testLogger(), Config{DeviceCount: 1, MaxKinds: len(telemetry.Kinds()) + 1}); err == nil {
		t.Fatalf("expected error for oversized kind bound")
	}
	if _, err := New(testLogger(), Config{DeviceCount: 1, ReportProbability: 1.5}); err == nil {
		t.Fatalf("expected error for report probability above 1")
	}
}

func TestNewBuildsRandomizedFleet(t *testing.T) {
	f, err := New(testLogger(), Config{DeviceCount: 50, Seed: 42})
	if err != nil {
		t.Fatalf("fleet init failed: %v", err)
	}
	if f.Size() != 50 {
		t.Fatalf("expected 50 devices, got %d", f.Size())
	}

	total := len(telemetry.Kinds())
	minKinds := total - 2
	if minKinds < 1 {
		minKinds = 1
	}
	seen := map[string]struct{}{}
	for _, d := range f.Devices() {
		if !strings.HasPrefix(d.ID(), "device_") || len(d.ID()) != len("device_")+8 {
			t.Fatalf("unexpected device id format %q", d.ID())
		}
		if _, dup := seen[d.ID()]; dup {
			t.Fatalf("duplicate device id %q", d.ID())
		}
		seen[d.ID()] = struct{}{}

		n := len(d.Kinds())
		if n < minKinds || n > total {
			t.Fatalf("device %s has %d kinds, want [%d,%d]", d.ID(), n, minKinds, total)
		}
	}
}

func TestKindSubsetsKeepRegistryOrder(t *testing.T) {
	f, err := New(testLogger(), Config{DeviceCount: 30, Seed: 7})
	if err != nil {
		t.Fatalf("fleet init failed: %v", err)
	}
	order := map[string]int{}
	for i, k := range telemetry.Kinds() {
		order[k] = i
	}
	for _, d := range f.Devices() {
		kinds := d.Kinds()
		for i := 1; i < len(kinds); i++ {
			if order[kinds[i-1]] >= order[kinds[i]] {
				t.Fatalf("device %s kinds out of registry order: %v", d.ID(), kinds)
			}
		}
	}
}

func TestGenerateBatchKeepsFleetOrder(t *testing.T) {
	f, err := New(testLogger(), Config{DeviceCount: 20, Seed: 11})
	if err != nil {
		t.Fatalf("fleet init failed: %v", err)
	}
	position := map[string]int{}
	for i, d := range f.Devices() {
		position[d.ID()] = i
	}

	now := time.Now()
	for tick := 0; tick < 100; tick++ {
		batch := f.GenerateBatch(now)
		last := -1
		for _, r := range batch {
			pos, ok := position[r.DeviceID]
			if !ok {
				t.Fatalf("batch contains unknown device %q", r.DeviceID)
			}
			if pos <= last {
				t.Fatalf("tick %d: batch order broke at %q", tick, r.DeviceID)
			}
			last = pos
		}
	}
}

func TestReportingRate(t *testing.T) {
	f, err := New(testLogger(), Config{DeviceCount: 3, Seed: 99, AnomalyProbability: -1})
	if err != nil {
		t.Fatalf("fleet init failed: %v", err)
	}

	const n = 10000
	included := map[string]int{}
	now := time.Now()
	for i := 0; i < n; i++ {
		for _, r := range f.GenerateBatch(now) {
			included[r.DeviceID]++
		}
	}
	for _, d := range f.Devices() {
		rate := float64(included[d.ID()]) / float64(n)
		if rate < 0.97 || rate > 0.99 {
			t.Fatalf("device %s reporting rate %v outside tolerance of 0.98", d.ID(), rate)
		}
	}
}

func TestSeededFleetsReplayIdentically(t *testing.T) {
	a, err := New(testLogger(), Config{DeviceCount: 5, Seed: 4242})
	if err != nil {
		t.Fatalf("fleet init failed: %v", err)
	}
	b, err := New(testLogger(), Config{DeviceCount: 5, Seed: 4242})
	if err != nil {
		t.Fatalf("fleet init failed: %v", err)
	}

	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	for tick := 0; tick < 50; tick++ {
		ba := a.GenerateBatch(now)
		bb := b.GenerateBatch(now)
		if len(ba) != len(bb) {
			t.Fatalf("tick %d: batch sizes diverged: %d vs %d", tick, len(ba), len(bb))
		}
		for i := range ba {
			for kind, ma := range ba[i].Readings {
				if mb := bb[i].Readings[kind]; ma.Value != mb.Value {
					t.Fatalf("tick %d: %s diverged: %v vs %v", tick, kind, ma.Value, mb.Value)
				}
			}
			if ba[i].Status != bb[i].Status {
				t.Fatalf("tick %d: status diverged", tick)
			}
		}
	}
}
