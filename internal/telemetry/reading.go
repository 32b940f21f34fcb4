// v2
// internal/telemetry/reading.go
package telemetry

import "time"

// Measurement is one sensor value with its unit.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Coordinates is a jittered latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Reading is one immutable device report. Timestamps are UTC; they
// serialize as RFC 3339 strings on the wire and in exports.
type Reading struct {
	DeviceID     string                 `json:"device_id"`
	Timestamp    time.Time              `json:"timestamp"`
	LocationID   string                 `json:"location_id"`
	LocationName string                 `json:"location_name"`
	Coordinates  Coordinates            `json:"coordinates"`
	Readings     map[string]Measurement `json:"readings"`
	Status       string                 `json:"status"`
}

// Batch is the ordered set of readings produced in a single tick. A
// device that skipped the tick simply has no entry.
type Batch []Reading
