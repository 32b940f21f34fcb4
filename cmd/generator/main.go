// v3
// cmd/generator/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abixb/severless-data-pipeline-AWS/internal/config"
	"github.com/abixb/severless-data-pipeline-AWS/internal/emitter"
	"github.com/abixb/severless-data-pipeline-AWS/internal/fleet"
	"github.com/abixb/severless-data-pipeline-AWS/internal/logging"
	"github.com/abixb/severless-data-pipeline-AWS/internal/sink"
)

func main() {
	cfg, err := config.LoadGenerator()
	if err != nil {
		logging.New("").Error("config error", "err", err)
		os.Exit(1)
	}

	// Flags override environment and properties for the knobs most
	// often set on the command line.
	devices := flag.Int("devices", cfg.DeviceCount, "number of simulated devices")
	interval := flag.Float64("interval", cfg.TickInterval.Seconds(), "seconds between generation cycles")
	count := flag.Int("count", cfg.TickLimit, "number of batches to generate (0 = unbounded)")
	output := flag.String("output", cfg.ExportPath, "bulk export path (empty = no export)")
	format := flag.String("format", string(cfg.ExportFormat), "export format: structured or tabular")
	seed := flag.Int64("seed", cfg.Seed, "RNG seed (0 = derive from clock)")
	flag.Parse()

	cfg.DeviceCount = *devices
	cfg.TickLimit = *count
	cfg.ExportPath = *output
	cfg.Seed = *seed

	logger := logging.New(cfg.LogPath)
	logger.Info("fleet generator starting")

	if *interval <= 0 {
		logger.Error("config error", "err", "interval must be positive")
		os.Exit(1)
	}
	cfg.TickInterval = time.Duration(*interval * float64(time.Second))
	cfg.ExportFormat, err = sink.ParseFormat(*format)
	if err != nil {
		logger.Error("config error", "err", err)
		os.Exit(1)
	}

	f, err := fleet.New(logger, fleet.Config{
		DeviceCount: cfg.DeviceCount,
		Seed:        cfg.Seed,
	})
	if err != nil {
		logger.Error("fleet init failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks, archive, err := buildSinks(ctx, logger, cfg)
	if err != nil {
		logger.Error("sink init failed", "err", err)
		os.Exit(1)
	}

	// A nil *sink.Archive must stay a nil interface inside the loop.
	var archiver emitter.Archiver
	if archive != nil {
		archiver = archive
	}
	loop := emitter.New(logger, f, cfg.TickInterval, cfg.TickLimit, cfg.FlushTimeout, sinks, archiver)
	if err := loop.Run(ctx); err != nil {
		logger.Error("emission loop failed", "err", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
