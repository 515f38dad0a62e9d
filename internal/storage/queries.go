package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Rows as stored. Amount columns are raw text.
type (
	ServiceRow struct {
		ID        string
		Title     string
		Details   string
		Price     string
		Available bool
	}

	TransactionRow struct {
		ID         string
		Price      sql.NullString
		FinishedAt sql.NullString
	}

	ExpenseRow struct {
		ID          string
		Description string
		Amount      sql.NullString
	}
)

const listServices = `SELECT id, title, details, price, available FROM services ORDER BY created_at, rowid`

func (q *Queries) ListServices(ctx context.Context) ([]ServiceRow, error) {
	rows, err := q.db.QueryContext(ctx, listServices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ServiceRow
	for rows.Next() {
		var i ServiceRow
		if err := rows.Scan(&i.ID, &i.Title, &i.Details, &i.Price, &i.Available); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getService = `SELECT id, title, details, price, available FROM services WHERE id = ?`

func (q *Queries) GetService(ctx context.Context, id string) (ServiceRow, error) {
	row := q.db.QueryRowContext(ctx, getService, id)
	var i ServiceRow
	err := row.Scan(&i.ID, &i.Title, &i.Details, &i.Price, &i.Available)
	return i, err
}

const createService = `INSERT INTO services (id, title, details, price, available) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateService(ctx context.Context, arg ServiceRow) error {
	_, err := q.db.ExecContext(ctx, createService, arg.ID, arg.Title, arg.Details, arg.Price, arg.Available)
	return err
}

const updateService = `UPDATE services
SET title = ?, details = ?, price = ?, available = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *Queries) UpdateService(ctx context.Context, arg ServiceRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateService, arg.Title, arg.Details, arg.Price, arg.Available, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setServiceAvailability = `UPDATE services SET available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) SetServiceAvailability(ctx context.Context, id string, available bool) (int64, error) {
	result, err := q.db.ExecContext(ctx, setServiceAvailability, available, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteService = `DELETE FROM services WHERE id = ?`

func (q *Queries) DeleteService(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteService, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTransactions = `SELECT id, price, finished_at FROM transactions ORDER BY rowid`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Price, &i.FinishedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertTransaction = `INSERT INTO transactions (id, price, finished_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET price = excluded.price, finished_at = excluded.finished_at`

func (q *Queries) UpsertTransaction(ctx context.Context, arg TransactionRow) error {
	_, err := q.db.ExecContext(ctx, upsertTransaction, arg.ID, arg.Price, arg.FinishedAt)
	return err
}

const listExpenses = `SELECT id, description, amount FROM expenses ORDER BY rowid`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(&i.ID, &i.Description, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertExpense = `INSERT INTO expenses (id, description, amount) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET description = excluded.description, amount = excluded.amount`

func (q *Queries) UpsertExpense(ctx context.Context, arg ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, upsertExpense, arg.ID, arg.Description, arg.Amount)
	return err
}
