// v0
// internal/telemetry/locations.go
package telemetry

// Location is a named site a device can be assigned to. Lat/Lon are the
// site's base coordinates; per-reading jitter is applied elsewhere and
// never written back.
type Location struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// locations is the registry of known sites (Seattle area).
var locations = []Location{
	{ID: "warehouse_a", Name: "Warehouse A", Lat: 47.6062, Lon: -122.3321},
	{ID: "warehouse_b", Name: "Warehouse B", Lat: 47.6152, Lon: -122.3447},
	{ID: "office_main", Name: "Main Office", Lat: 47.6205, Lon: -122.3493},
	{ID: "production_floor", Name: "Production Floor", Lat: 47.6170, Lon: -122.3377},
	{ID: "storage_cold", Name: "Cold Storage", Lat: 47.6180, Lon: -122.3399},
}

// Locations returns the registered sites in declaration order.
func Locations() []Location {
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}
