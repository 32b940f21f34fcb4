// v1
// internal/telemetry/profiles.go
package telemetry

// SensorProfile describes one sensor kind: its unit label, inclusive value
// bounds, rounding precision (decimal places) and per-tick drift magnitude.
// Decay marks kinds whose value never rises on an ordinary tick.
type SensorProfile struct {
	Kind      string
	Unit      string
	Min       float64
	Max       float64
	Precision int
	Drift     float64
	Decay     bool
}

// profiles is the registry of supported sensor kinds. Adding a new
// telemetry type means adding a row here and nothing else.
var profiles = []SensorProfile{
	{Kind: "temperature", Unit: "°C", Min: -10, Max: 45, Precision: 1, Drift: 0.1},
	{Kind: "humidity", Unit: "%", Min: 0, Max: 100, Precision: 1, Drift: 2},
	{Kind: "pressure", Unit: "hPa", Min: 970, Max: 1050, Precision: 1, Drift: 0.5},
	{Kind: "light_level", Unit: "lux", Min: 0, Max: 10000, Precision: 0, Drift: 50},
	{Kind: "air_quality", Unit: "PM2.5", Min: 0, Max: 500, Precision: 1, Drift: 5},
	{Kind: "battery_level", Unit: "%", Min: 0, Max: 100, Precision: 0, Drift: 0.1, Decay: true},
}

var profileIndex = func() map[string]SensorProfile {
	m := make(map[string]SensorProfile, len(profiles))
	for _, p := range profiles {
		m[p.Kind] = p
	}
	return m
}()

// Kinds returns the registered kind names in declaration order. The
// returned slice is a copy and safe to reorder.
func Kinds() []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.Kind
	}
	return out
}

// Profile looks up the profile for kind. ok is false for unknown kinds.
func Profile(kind string) (SensorProfile, bool) {
	p, ok := profileIndex[kind]
	return p, ok
}
