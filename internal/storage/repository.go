package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"bizdash/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	loc     *time.Location
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations. Stored timestamps without a zone are read in
// loc.
func NewSQLiteRepository(dbPath string, loc *time.Location) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	return &SQLiteRepository{db: db, queries: New(db), loc: loc}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListServices(ctx context.Context) ([]core.Service, error) {
	rows, err := r.queries.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make([]core.Service, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toService())
	}
	return out, nil
}

func (r *SQLiteRepository) GetService(ctx context.Context, id string) (core.Service, error) {
	row, err := r.queries.GetService(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Service{}, core.ErrServiceNotFound
	}
	if err != nil {
		return core.Service{}, fmt.Errorf("get service %s: %w", id, err)
	}
	return row.toService(), nil
}

func (r *SQLiteRepository) CreateService(ctx context.Context, s core.Service) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	s.ID = uuid.NewString()
	if err := r.queries.CreateService(ctx, serviceRow(s)); err != nil {
		return "", fmt.Errorf("create service: %w", err)
	}
	slog.InfoContext(ctx, "Service saved to SQLite", "id", s.ID, "title", s.Title, "price", s.Price.String())
	return s.ID, nil
}

func (r *SQLiteRepository) UpdateService(ctx context.Context, s core.Service) error {
	if err := s.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateService(ctx, serviceRow(s))
	if err != nil {
		return fmt.Errorf("update service %s: %w", s.ID, err)
	}
	if n == 0 {
		return core.ErrServiceNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	n, err := r.queries.SetServiceAvailability(ctx, id, available)
	if err != nil {
		return fmt.Errorf("set availability %s: %w", id, err)
	}
	if n == 0 {
		return core.ErrServiceNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteService(ctx context.Context, id string) error {
	n, err := r.queries.DeleteService(ctx, id)
	if err != nil {
		return fmt.Errorf("delete service %s: %w", id, err)
	}
	if n == 0 {
		return core.ErrServiceNotFound
	}
	slog.InfoContext(ctx, "Service deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		rec := core.Record{}
		if row.Price.Valid {
			rec["price"] = row.Price.String
		}
		if row.FinishedAt.Valid {
			rec["finishedAt"] = row.FinishedAt.String
		}
		out = append(out, core.TransactionFromRecord(row.ID, rec, r.loc))
	}
	return out, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		rec := core.Record{"description": row.Description}
		if row.Amount.Valid {
			rec["amount"] = row.Amount.String
		}
		out = append(out, core.ExpenseFromRecord(row.ID, rec))
	}
	return out, nil
}

// ImportTransactions upserts transaction documents in one transaction.
// Documents without an id get a fresh one. Values are stored as written so
// malformed prices are coerced on read, like in any other store.
func (r *SQLiteRepository) ImportTransactions(ctx context.Context, docs []core.Record) (int, error) {
	return r.importDocs(ctx, docs, func(q *Queries, id string, doc core.Record) error {
		return q.UpsertTransaction(ctx, TransactionRow{
			ID:         id,
			Price:      nullString(doc, "price"),
			FinishedAt: nullTime(doc, r.loc, "finishedAt", "finished_at"),
		})
	})
}

// ImportExpenses upserts expense documents in one transaction.
func (r *SQLiteRepository) ImportExpenses(ctx context.Context, docs []core.Record) (int, error) {
	return r.importDocs(ctx, docs, func(q *Queries, id string, doc core.Record) error {
		return q.UpsertExpense(ctx, ExpenseRow{
			ID:          id,
			Description: doc.String("description"),
			Amount:      nullString(doc, "amount"),
		})
	})
}

func (r *SQLiteRepository) importDocs(ctx context.Context, docs []core.Record, put func(*Queries, string, core.Record) error) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for i, doc := range docs {
		id := doc.String("id")
		if id == "" {
			id = uuid.NewString()
		}
		if err := put(q, id, doc); err != nil {
			return 0, fmt.Errorf("import document %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(docs), nil
}

func (row ServiceRow) toService() core.Service {
	return core.Service{
		ID:        row.ID,
		Title:     row.Title,
		Details:   row.Details,
		Price:     core.CoerceAmount(row.Price),
		Available: row.Available,
	}
}

func serviceRow(s core.Service) ServiceRow {
	return ServiceRow{
		ID:        s.ID,
		Title:     s.Title,
		Details:   s.Details,
		Price:     s.Price.String(),
		Available: s.Available,
	}
}

func nullString(doc core.Record, key string) sql.NullString {
	v, ok := doc[key]
	if !ok || v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: doc.String(key), Valid: true}
}

// nullTime normalizes any accepted timestamp shape to RFC3339. Values that
// cannot be read are stored as-is.
func nullTime(doc core.Record, loc *time.Location, keys ...string) sql.NullString {
	for _, key := range keys {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		if t := core.CoerceTime(v, loc); !t.IsZero() {
			return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		return nullString(doc, key)
	}
	return sql.NullString{}
}
