// v3
// internal/device/device.go
package device

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// DefaultAnomalyProbability is the per-invocation chance that one
// reported value is forced to an extreme bound.
const DefaultAnomalyProbability = 0.01

// coordJitter bounds the per-axis coordinate perturbation (~±11m).
const coordJitter = 0.0001

// Device is one simulated sensor unit. It owns a current value per
// supported kind and evolves that state on every AdvanceAndRead call, so
// consecutive readings drift rather than jump. A Device is not safe for
// concurrent use; the fleet advances each device from a single goroutine.
type Device struct {
	id       string
	loc      telemetry.Location
	kinds    []string
	values   map[string]float64
	rng      *rand.Rand
	anomalyP float64
}

// New creates a device at loc reporting the given sensor kinds. kinds
// must be a non-empty subset of the registered kinds; an unrecognized
// kind is a configuration error and fails here, never at tick time.
// Every kind starts at a uniformly random in-range value drawn from rng,
// which the device keeps for all subsequent draws.
func New(id string, loc telemetry.Location, kinds []string, rng *rand.Rand) (*Device, error) {
	if id == "" {
		return nil, fmt.Errorf("device id must not be empty")
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("device %s: at least one sensor kind required", id)
	}
	d := &Device{
		id:       id,
		loc:      loc,
		kinds:    append([]string(nil), kinds...),
		values:   make(map[string]float64, len(kinds)),
		rng:      rng,
		anomalyP: DefaultAnomalyProbability,
	}
	for _, kind := range d.kinds {
		prof, ok := telemetry.Profile(kind)
		if !ok {
			return nil, fmt.Errorf("device %s: unknown sensor kind %q", id, kind)
		}
		d.values[kind] = prof.Min + rng.Float64()*(prof.Max-prof.Min)
	}
	return d, nil
}

// SetAnomalyProbability overrides the extreme-value fault chance.
// Zero disables anomalies entirely.
func (d *Device) SetAnomalyProbability(p float64) { d.anomalyP = p }

// ID returns the device identifier.
func (d *Device) ID() string { return d.id }

// Location returns the assigned site.
func (d *Device) Location() telemetry.Location { return d.loc }

// Kinds returns the supported sensor kinds in the device's fixed order.
func (d *Device) Kinds() []string { return append([]string(nil), d.kinds...) }

// Value returns the current persisted value for kind.
func (d *Device) Value(kind string) (float64, bool) {
	v, ok := d.values[kind]
	return v, ok
}

// SetValue pins the current value for a supported kind, clamped to the
// profile bounds. Useful for warm-starting a device at a known state.
func (d *Device) SetValue(kind string, v float64) error {
	if _, ok := d.values[kind]; !ok {
		return fmt.Errorf("device %s: kind %q not supported", d.id, kind)
	}
	prof, _ := telemetry.Profile(kind)
	d.values[kind] = clamp(v, prof.Min, prof.Max)
	return nil
}

// AdvanceAndRead advances the device state by one tick and builds the
// resulting reading, timestamped at now in UTC.
//
// The pseudorandom draw order is fixed so seeded runs reproduce exactly:
// one drift draw per kind in the device's kind order, one anomaly draw,
// two more draws only when the anomaly fires (kind index, spike/drop),
// one status draw, then latitude and longitude jitter.
func (d *Device) AdvanceAndRead(now time.Time) telemetry.Reading {
	measurements := make(map[string]telemetry.Measurement, len(d.kinds))
	for _, kind := range d.kinds {
		prof, _ := telemetry.Profile(kind)
		v := Step(prof, d.values[kind], d.rng.Float64()*2*prof.Drift-prof.Drift)
		d.values[kind] = v
		measurements[kind] = telemetry.Measurement{Value: v, Unit: prof.Unit}
	}

	// The check draw happens even when anomalies are disabled so the
	// per-tick draw sequence does not depend on the probability setting.
	if d.rng.Float64() < d.anomalyP {
		kind := d.kinds[d.rng.Intn(len(d.kinds))]
		prof, _ := telemetry.Profile(kind)
		extreme := prof.Max
		if d.rng.Float64() < 0.5 {
			extreme = prof.Min
		}
		// The fault sticks: the extreme becomes the next tick's baseline.
		d.values[kind] = extreme
		measurements[kind] = telemetry.Measurement{Value: extreme, Unit: prof.Unit}
	}

	status := telemetry.PickStatus(d.rng.Float64())
	lat := d.loc.Lat + (d.rng.Float64()*2*coordJitter - coordJitter)
	lon := d.loc.Lon + (d.rng.Float64()*2*coordJitter - coordJitter)

	return telemetry.Reading{
		DeviceID:     d.id,
		Timestamp:    now.UTC(),
		LocationID:   d.loc.ID,
		LocationName: d.loc.Name,
		Coordinates:  telemetry.Coordinates{Latitude: lat, Longitude: lon},
		Readings:     measurements,
		Status:       status,
	}
}

// Step applies one drift delta to current under prof's rules: decay
// kinds force the delta non-positive, the sum is clamped to the profile
// bounds and rounded to the profile precision. The result is what gets
// persisted, which is what keeps a series temporally coherent instead
// of i.i.d. noise.
func Step(prof telemetry.SensorProfile, current, delta float64) float64 {
	if prof.Decay {
		// Battery-like quantities only ever deplete.
		delta = -math.Abs(delta)
	}
	return roundTo(clamp(current+delta, prof.Min, prof.Max), prof.Precision)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTo(v float64, precision int) float64 {
	scale := math.Pow10(precision)
	return math.Round(v*scale) / scale
}
