package adapters

import (
	"context"

	"bizdash/internal/core"
	"bizdash/internal/records"
	"bizdash/internal/services"
	"bizdash/internal/storage"
)

var _ records.Store = (*SQLiteAdapter)(nil)

// SQLiteAdapter serves reads straight from SQLite and routes service writes
// through the CatalogService so every mutation is announced over AMQP.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	catalog *services.CatalogService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, catalog *services.CatalogService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		catalog: catalog,
	}
}

func (a *SQLiteAdapter) ListServices(ctx context.Context) ([]core.Service, error) {
	return a.storage.ListServices(ctx)
}

func (a *SQLiteAdapter) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return a.storage.ListTransactions(ctx)
}

func (a *SQLiteAdapter) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return a.storage.ListExpenses(ctx)
}

func (a *SQLiteAdapter) CreateService(ctx context.Context, s core.Service) (string, error) {
	return a.catalog.CreateService(ctx, s)
}

func (a *SQLiteAdapter) UpdateService(ctx context.Context, s core.Service) error {
	return a.catalog.UpdateService(ctx, s)
}

func (a *SQLiteAdapter) SetAvailability(ctx context.Context, id string, available bool) error {
	return a.catalog.SetAvailability(ctx, id, available)
}

func (a *SQLiteAdapter) DeleteService(ctx context.Context, id string) error {
	return a.catalog.DeleteService(ctx, id)
}

// Ping reports database reachability for readiness checks.
func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}
