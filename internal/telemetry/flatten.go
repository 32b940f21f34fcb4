// v1
// internal/telemetry/flatten.go
package telemetry

import (
	"strconv"
	"time"
)

// Tabular export: one row per reading, identity columns first, then a
// <kind>_value/<kind>_unit pair per registered kind in registry order.
// Kinds a reading does not carry leave their cells empty.

var flatIdentityColumns = []string{
	"device_id",
	"timestamp",
	"location_id",
	"location_name",
	"latitude",
	"longitude",
	"status",
}

// FlatHeader returns the column names for the tabular export.
func FlatHeader() []string {
	header := make([]string, 0, len(flatIdentityColumns)+2*len(profiles))
	header = append(header, flatIdentityColumns...)
	for _, p := range profiles {
		header = append(header, p.Kind+"_value", p.Kind+"_unit")
	}
	return header
}

// FlatRow renders r as one tabular row aligned with FlatHeader.
func FlatRow(r Reading) []string {
	row := make([]string, 0, len(flatIdentityColumns)+2*len(profiles))
	row = append(row,
		r.DeviceID,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.LocationID,
		r.LocationName,
		strconv.FormatFloat(r.Coordinates.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Coordinates.Longitude, 'f', -1, 64),
		r.Status,
	)
	for _, p := range profiles {
		m, ok := r.Readings[p.Kind]
		if !ok {
			row = append(row, "", "")
			continue
		}
		row = append(row, strconv.FormatFloat(m.Value, 'f', p.Precision, 64), m.Unit)
	}
	return row
}
