// v1
// internal/telemetry/status.go
package telemetry

// Device status categories and their sampling weights. The weights sum
// to 1 and heavily favour normal operation.
const (
	StatusOperational = "operational"
	StatusMaintenance = "maintenance"
	StatusWarning     = "warning"
	StatusError       = "error"
)

var statuses = []string{StatusOperational, StatusMaintenance, StatusWarning, StatusError}

var statusWeights = []float64{0.95, 0.03, 0.015, 0.005}

// PickStatus maps one uniform draw u in [0,1) to a status category by
// walking the cumulative weight sum. Callers own the randomness, which
// keeps the selection trivially testable with fixed draws.
func PickStatus(u float64) string {
	var total float64
	for _, w := range statusWeights {
		total += w
	}
	target := u * total
	var cum float64
	for i, w := range statusWeights {
		cum += w
		if target < cum {
			return statuses[i]
		}
	}
	return statuses[len(statuses)-1]
}

// Statuses returns the known status categories in weight order.
func Statuses() []string {
	out := make([]string, len(statuses))
	copy(out, statuses)
	return out
}
