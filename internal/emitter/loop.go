// v3
// internal/emitter/loop.go

// Package emitter drives the tick cadence: generate a batch, hand it to
// every configured sink, wait, repeat. One tick runs to completion
// before the next begins; the inter-tick wait is the only suspension
// point.
package emitter

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/abixb/severless-data-pipeline-AWS/internal/fleet"
	"github.com/abixb/severless-data-pipeline-AWS/internal/sink"
	"github.com/abixb/severless-data-pipeline-AWS/internal/telemetry"
)

// DefaultFlushTimeout bounds the final export flush when no explicit
// timeout is configured.
const DefaultFlushTimeout = 10 * time.Second

// Archiver accumulates every batch and writes the bulk export when
// flushed. *sink.Archive satisfies it; tests substitute stubs.
type Archiver interface {
	Publish(ctx context.Context, batch telemetry.Batch) error
	Flush() error
}

// State is the loop lifecycle phase.
type State int32

const (
	StateRunning State = iota
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Loop owns one emission run. It borrows the fleet; ownership of the
// devices stays with the caller.
type Loop struct {
	log          *slog.Logger
	fleet        *fleet.Fleet
	sinks        []sink.Sink
	archive      Archiver
	interval     time.Duration
	limit        int
	flushTimeout time.Duration

	state atomic.Int32
}

// New builds a loop ticking every interval for at most limit ticks
// (0 = unbounded). The archive may be nil when no export is configured;
// when set it receives every batch and is flushed once during STOPPING,
// bounded by flushTimeout (<=0 uses DefaultFlushTimeout).
func New(log *slog.Logger, f *fleet.Fleet, interval time.Duration, limit int, flushTimeout time.Duration, sinks []sink.Sink, archive Archiver) *Loop {
	if flushTimeout <= 0 {
		flushTimeout = DefaultFlushTimeout
	}
	l := &Loop{
		log:          log,
		fleet:        f,
		sinks:        sinks,
		archive:      archive,
		interval:     interval,
		limit:        limit,
		flushTimeout: flushTimeout,
	}
	l.state.Store(int32(StateStopped))
	return l
}

// State reports the current lifecycle phase. Safe to call from other
// goroutines while Run is in flight.
func (l *Loop) State() State { return State(l.state.Load()) }

// Run ticks until the context is cancelled or the tick limit is
// reached, then performs the final flush. Cancellation observed during
// a tick lets the in-flight delivery finish first. Sink delivery
// failures are logged and never stop the loop; only a failed final
// flush is fatal.
func (l *Loop) Run(ctx context.Context) error {
	l.state.Store(int32(StateRunning))
	l.log.Info("emission loop started", "interval", l.interval.String(), "tickLimit", l.limit)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	ticks := 0
	for {
		// Cancellation is observed only at the select below; the ctx
		// handed to the sinks never carries it, so an interrupt landing
		// mid-tick lets the in-flight delivery step finish first.
		l.tick(context.WithoutCancel(ctx))
		ticks++
		if l.limit > 0 && ticks >= l.limit {
			l.log.Info("tick limit reached", "ticks", ticks)
			break
		}
		select {
		case <-ctx.Done():
			l.log.Info("interrupt observed", "ticks", ticks)
		case <-ticker.C:
			continue
		}
		break
	}

	l.state.Store(int32(StateStopping))
	err := l.shutdown()
	l.state.Store(int32(StateStopped))
	if err != nil {
		return err
	}
	l.log.Info("emission loop stopped", "ticks", ticks)
	return nil
}

func (l *Loop) tick(ctx context.Context) {
	batch := l.fleet.GenerateBatch(time.Now())
	l.log.Info("batch generated", "readings", len(batch), "devices", l.fleet.Size())

	for _, s := range l.sinks {
		if err := s.Publish(ctx, batch); err != nil {
			l.log.Warn("batch delivery failed", "sink", s.Name(), "records", len(batch), "err", err)
		}
	}
	if l.archive != nil {
		_ = l.archive.Publish(ctx, batch)
	}
}

// shutdown flushes the archive and closes the sinks. The export flush
// is the only fatal step: an unwritable target loses the accumulated
// data and the process must report it. The flush is bounded by the
// configured timeout so a hung filesystem cannot wedge shutdown.
func (l *Loop) shutdown() error {
	var flushErr error
	if l.archive != nil {
		done := make(chan error, 1)
		go func() { done <- l.archive.Flush() }()
		select {
		case err := <-done:
			if err != nil {
				flushErr = fmt.Errorf("final export flush: %w", err)
			}
		case <-time.After(l.flushTimeout):
			flushErr = fmt.Errorf("final export flush timed out after %s", l.flushTimeout)
		}
	}
	for _, s := range l.sinks {
		if err := s.Close(); err != nil {
			l.log.Warn("sink close failed", "sink", s.Name(), "err", err)
		}
	}
	return flushErr
}
