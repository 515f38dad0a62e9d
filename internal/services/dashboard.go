package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bizdash/internal/cache"
	"bizdash/internal/core"
	"bizdash/internal/records"
)

const snapshotKey = "dashboard"

// Snapshot is one complete fetch of the three collections. Version grows by
// one for every successful fetch; the zero Snapshot has version 0.
type Snapshot struct {
	Version      uint64
	FetchedAt    time.Time
	Services     []core.Service
	Transactions []core.Transaction
	Expenses     []core.Expense
	Summary      core.Summary
}

// Dashboard fetches the collections, keeps the last good snapshot and
// derives the summary counters and the revenue chart from it.
type Dashboard struct {
	reader   records.Reader
	cache    *cache.LRUCache[Snapshot]
	bucketer core.Bucketer
	chart    core.ChartState

	refreshMu sync.Mutex

	mu      sync.RWMutex
	last    Snapshot
	version uint64
}

// NewDashboard caches snapshots for ttl. A non-positive ttl refetches on
// every request.
func NewDashboard(reader records.Reader, ttl time.Duration, bucketer core.Bucketer) *Dashboard {
	return &Dashboard{
		reader:   reader,
		cache:    cache.NewLRUCache[Snapshot](1, ttl),
		bucketer: bucketer,
	}
}

// Cache exposes the snapshot cache for periodic cleanup.
func (d *Dashboard) Cache() cache.Cleaner {
	return d.cache
}

// Refresh fetches all three collections. Services are read concurrently
// with the transactions-then-expenses chain; results are used only once
// both complete. On error the previous snapshot is returned unchanged.
func (d *Dashboard) Refresh(ctx context.Context) (Snapshot, error) {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	var (
		services []core.Service
		txs      []core.Transaction
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		services, err = d.reader.ListServices(gctx)
		if err != nil {
			return fmt.Errorf("fetch services: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = d.reader.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("fetch transactions: %w", err)
		}
		expenses, err = d.reader.ListExpenses(gctx)
		if err != nil {
			return fmt.Errorf("fetch expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return d.Last(), err
	}

	d.mu.Lock()
	d.version++
	snap := Snapshot{
		Version:      d.version,
		FetchedAt:    time.Now(),
		Services:     services,
		Transactions: txs,
		Expenses:     expenses,
		Summary:      core.Summarize(services, txs, expenses),
	}
	d.last = snap
	d.mu.Unlock()

	d.cache.Set(snapshotKey, snap)
	slog.DebugContext(ctx, "Dashboard snapshot refreshed",
		"version", snap.Version,
		"services", len(services),
		"transactions", len(txs),
		"expenses", len(expenses))
	return snap, nil
}

// Snapshot returns the cached snapshot, refreshing it when expired. Fetch
// failures are logged and the last good snapshot is returned.
func (d *Dashboard) Snapshot(ctx context.Context) Snapshot {
	if snap, ok := d.cache.Get(snapshotKey); ok {
		return snap
	}
	snap, err := d.Refresh(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard fetch failed, serving last snapshot",
			"error", err, "version", snap.Version)
	}
	return snap
}

// Last returns the last good snapshot without fetching.
func (d *Dashboard) Last() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Invalidate forces the next Snapshot call to refetch.
func (d *Dashboard) Invalidate() {
	d.cache.Clear()
}

func (d *Dashboard) Summary(ctx context.Context) core.Summary {
	return d.Snapshot(ctx).Summary
}

// Chart returns the revenue chart for g. An empty transaction list keeps
// the previously computed chart.
func (d *Dashboard) Chart(ctx context.Context, g core.Granularity) core.Chart {
	return d.ChartOf(d.Snapshot(ctx), g)
}

// ChartOf derives the revenue chart for g from snap, so counters and chart
// rendered together come from the same snapshot.
func (d *Dashboard) ChartOf(snap Snapshot, g core.Granularity) core.Chart {
	return d.chart.Observe(snap.Version, snap.Transactions, g, d.bucketer)
}
