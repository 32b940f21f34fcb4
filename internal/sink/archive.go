// v2
// internal/sink/archive.go
package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// Format selects the bulk-export serialization.
type Format string

const (
	// FormatStructured writes the nested JSON schema, one array element
	// per reading.
	FormatStructured Format = "structured"
	// FormatTabular writes flattened CSV, one row per reading, with
	// <kind>_value/<kind>_unit columns per registered kind.
	FormatTabular Format = "tabular"
)

// ParseFormat validates a configured export format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatStructured, FormatTabular:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (want structured or tabular)", s)
	}
}

// Archive accumulates every generated reading in memory and writes the
// bulk export file when flushed, normally once at shutdown. An
// unwritable target is only an error at flush time; ticks before that
// are unaffected.
type Archive struct {
	log    *slog.Logger
	path   string
	format Format

	mu       sync.Mutex
	readings telemetry.Batch
}

// NewArchive builds an accumulator targeting path in the given format.
func NewArchive(log *slog.Logger, path string, format Format) *Archive {
	return &Archive{log: log, path: path, format: format}
}

func (a *Archive) Name() string { return "archive" }

// Publish appends the batch to the in-memory accumulation.
func (a *Archive) Publish(_ context.Context, batch telemetry.Batch) error {
	a.mu.Lock()
	a.readings = append(a.readings, batch...)
	a.mu.Unlock()
	return nil
}

// Len reports the number of accumulated readings.
func (a *Archive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.readings)
}

// Flush writes everything accumulated so far to the export path.
func (a *Archive) Flush() error {
	a.mu.Lock()
	readings := append(telemetry.Batch(nil), a.readings...)
	a.mu.Unlock()

	switch a.format {
	case FormatTabular:
		if err := a.writeCSV(readings); err != nil {
			return err
		}
	default:
		if err := a.writeJSON(readings); err != nil {
			return err
		}
	}
	a.log.Info("export written", "path", a.path, "format", string(a.format), "records", len(readings))
	return nil
}

func (a *Archive) Close() error { return nil }

func (a *Archive) writeJSON(readings telemetry.Batch) error {
	b, err := json.MarshalIndent(readings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(a.path, b, 0644); err != nil {
		return fmt.Errorf("write export %s: %w", a.path, err)
	}
	return nil
}

func (a *Archive) writeCSV(readings telemetry.Batch) error {
	f, err := os.Create(a.path)
	if err != nil {
		return fmt.Errorf("create export %s: %w", a.path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(telemetry.FlatHeader()); err != nil {
		f.Close()
		return fmt.Errorf("write export header: %w", err)
	}
	for _, r := range readings {
		if err := w.Write(telemetry.FlatRow(r)); err != nil {
			f.Close()
			return fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush export %s: %w", a.path, err)
	}
	return f.Close()
}
