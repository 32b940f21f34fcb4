// v1
// internal/logging/logging.go
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger. When path is non-empty, entries are
// teed to stdout and the file so runs inside containers stay inspectable
// through attached volumes. A file that cannot be opened degrades to
// stdout-only with a logged error.
func New(path string) *slog.Logger {
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		l := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		l.Error("failed to open log file", "path", path, "err", err)
		return l
	}
	mw := io.MultiWriter(os.Stdout, f)
	return slog.New(slog.NewTextHandler(mw, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
