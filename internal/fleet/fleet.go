// v2
// internal/fleet/fleet.go
package fleet

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abixb/severless-data-pipeline-AWS/internal/device"
	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// DefaultReportProbability is the per-tick chance each device reports.
const DefaultReportProbability = 0.98

// Config controls fleet construction.
type Config struct {
	// DeviceCount is the number of devices to simulate.
	DeviceCount int
	// Seed feeds the master RNG. Zero derives a seed from the clock.
	Seed int64
	// AnomalyProbability is the per-reading extreme-value fault chance.
	// Negative disables anomalies; zero uses the device default.
	AnomalyProbability float64
	// ReportProbability is the per-tick inclusion chance per device.
	// Zero uses DefaultReportProbability.
	ReportProbability float64
	// MinKinds/MaxKinds bound the random kind-subset size per device.
	// Zero derives the defaults [max(1, total-2), total].
	MinKinds int
	MaxKinds int
}

// Fleet owns an ordered collection of devices and produces one batch of
// readings per tick. It is passed explicitly into the emission loop;
// there is no package-level fleet state.
type Fleet struct {
	log     *slog.Logger
	devices []*device.Device
	rng     *rand.Rand
	reportP float64
}

// New constructs cfg.DeviceCount devices, each at a uniformly random
// registered location with a uniformly random kind subset. Device ids
// are random 8-hex tokens, collision-checked within the fleet. All
// randomness descends from the master seed so a seeded fleet replays
// identically.
func New(log *slog.Logger, cfg Config) (*Fleet, error) {
	if cfg.DeviceCount <= 0 {
		return nil, fmt.Errorf("device count must be positive, got %d", cfg.DeviceCount)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	reportP := cfg.ReportProbability
	if reportP == 0 {
		reportP = DefaultReportProbability
	}
	if reportP < 0 || reportP > 1 {
		return nil, fmt.Errorf("report probability out of range: %v", cfg.ReportProbability)
	}

	kinds := telemetry.Kinds()
	minKinds := cfg.MinKinds
	if minKinds == 0 {
		minKinds = len(kinds) - 2
		if minKinds < 1 {
			minKinds = 1
		}
	}
	maxKinds := cfg.MaxKinds
	if maxKinds == 0 {
		maxKinds = len(kinds)
	}
	if minKinds < 1 || maxKinds > len(kinds) || minKinds > maxKinds {
		return nil, fmt.Errorf("invalid kind subset bounds [%d,%d] for %d registered kinds", minKinds, maxKinds, len(kinds))
	}

	locs := telemetry.Locations()
	rng := rand.New(rand.NewSource(seed))

	f := &Fleet{log: log, rng: rng, reportP: reportP}
	seen := make(map[string]struct{}, cfg.DeviceCount)
	for i := 0; i < cfg.DeviceCount; i++ {
		id := newDeviceID()
		for {
			if _, dup := seen[id]; !dup {
				break
			}
			id = newDeviceID()
		}
		seen[id] = struct{}{}

		loc := locs[rng.Intn(len(locs))]
		n := minKinds + rng.Intn(maxKinds-minKinds+1)
		subset := sampleKinds(rng, kinds, n)

		d, err := device.New(id, loc, subset, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return nil, fmt.Errorf("creating device %d/%d: %w", i+1, cfg.DeviceCount, err)
		}
		switch {
		case cfg.AnomalyProbability < 0:
			d.SetAnomalyProbability(0)
		case cfg.AnomalyProbability > 0:
			d.SetAnomalyProbability(cfg.AnomalyProbability)
		}
		f.devices = append(f.devices, d)
	}

	log.Info("fleet initialized", "devices", len(f.devices), "seed", seed)
	return f, nil
}

// GenerateBatch advances each reporting device once and collects the
// results in the fleet's fixed iteration order. Each device is included
// with the configured report probability and silently skipped otherwise,
// modelling transient connectivity loss.
func (f *Fleet) GenerateBatch(now time.Time) telemetry.Batch {
	batch := make(telemetry.Batch, 0, len(f.devices))
	for _, d := range f.devices {
		if f.rng.Float64() >= f.reportP {
			continue
		}
		batch = append(batch, d.AdvanceAndRead(now))
	}
	return batch
}

// Devices returns the fleet members in iteration order.
func (f *Fleet) Devices() []*device.Device {
	return append([]*device.Device(nil), f.devices...)
}

// Size returns the number of devices in the fleet.
func (f *Fleet) Size() int { return len(f.devices) }

// newDeviceID builds an id like device_3fa85f64. Eight hex characters of
// a v4 UUID make collisions improbable; New still collision-checks.
func newDeviceID() string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "device_" + token[:8]
}

// sampleKinds picks n distinct kinds uniformly, then restores registry
// order so every device iterates its kinds the same stable way.
func sampleKinds(rng *rand.Rand, kinds []string, n int) []string {
	order := make(map[string]int, len(kinds))
	for i, k := range kinds {
		order[k] = i
	}
	perm := rng.Perm(len(kinds))
	subset := make([]string, 0, n)
	for _, idx := range perm[:n] {
		subset = append(subset, kinds[idx])
	}
	sort.Slice(subset, func(i, j int) bool { return order[subset[i]] < order[subset[j]] })
	return subset
}
