// Package worker mirrors the SQLite service catalog into Google Sheets.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"bizdash/internal/amqp"
	"bizdash/internal/core"
)

// ServiceSource is the catalog of record.
type ServiceSource interface {
	ListServices(ctx context.Context) ([]core.Service, error)
}

// ServiceMirror receives full rewrites of the catalog.
type ServiceMirror interface {
	ReplaceServices(ctx context.Context, services []core.Service) error
}

// MirrorStats describes the mirror runs so far.
type MirrorStats struct {
	Runs       int
	Failures   int
	LastMirror time.Time
	LastCount  int
	LastError  string
}

// MirrorWorker copies the whole service catalog to the mirror on every
// service change event and on a cron schedule for events that were lost.
type MirrorWorker struct {
	source ServiceSource
	target ServiceMirror
	now    func() time.Time

	// runMu serializes mirror runs; a full rewrite must not interleave.
	runMu sync.Mutex

	mu    sync.Mutex
	stats MirrorStats
	cron  *cron.Cron
}

func NewMirrorWorker(source ServiceSource, target ServiceMirror) *MirrorWorker {
	return &MirrorWorker{
		source: source,
		target: target,
		now:    time.Now,
	}
}

// HandleServiceChanged mirrors the catalog after a change event. The
// message only names the service; the full catalog is re-read. A returned
// error makes the consumer requeue the message.
func (w *MirrorWorker) HandleServiceChanged(ctx context.Context, msg *amqp.ServiceChangedMessage) error {
	slog.InfoContext(ctx, "Processing service changed message",
		"id", msg.ID,
		"action", msg.Action,
		"timestamp", msg.Timestamp)

	if err := w.Mirror(ctx, "event"); err != nil {
		return fmt.Errorf("mirror after %s of %s: %w", msg.Action, msg.ID, err)
	}
	return nil
}

// Mirror reads every service from the source and rewrites the mirror.
func (w *MirrorWorker) Mirror(ctx context.Context, trigger string) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	start := w.now()
	services, err := w.source.ListServices(ctx)
	if err == nil {
		err = w.target.ReplaceServices(ctx, services)
	}

	w.mu.Lock()
	w.stats.Runs++
	if err != nil {
		w.stats.Failures++
		w.stats.LastError = err.Error()
	} else {
		w.stats.LastMirror = start
		w.stats.LastCount = len(services)
		w.stats.LastError = ""
	}
	w.mu.Unlock()

	if err != nil {
		slog.ErrorContext(ctx, "Catalog mirror failed", "trigger", trigger, "error", err)
		return err
	}
	slog.InfoContext(ctx, "Catalog mirrored",
		"trigger", trigger,
		"services", len(services),
		"duration_ms", w.now().Sub(start).Milliseconds())
	return nil
}

// StartSchedule runs Mirror on spec (standard cron syntax or a descriptor
// such as "@every 15m") until ctx is done or Stop is called.
func (w *MirrorWorker) StartSchedule(ctx context.Context, spec string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return errors.New("mirror schedule already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		_ = w.Mirror(ctx, "schedule")
	}); err != nil {
		return fmt.Errorf("invalid mirror schedule %q: %w", spec, err)
	}
	c.Start()
	w.cron = c

	slog.InfoContext(ctx, "Mirror schedule started", "schedule", spec)
	return nil
}

// Stop halts the schedule and waits for a running mirror to finish.
func (w *MirrorWorker) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (w *MirrorWorker) Stats() MirrorStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
