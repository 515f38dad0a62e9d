package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Collection names in the record store.
const (
	CollectionServices     = "services"
	CollectionTransactions = "transactions"
	CollectionExpenses     = "expenses"
)

type (
	// Record is a single stored document as returned by a record store.
	Record map[string]any

	Service struct {
		ID        string
		Title     string
		Details   string
		Price     decimal.Decimal
		Available bool
	}

	// Transaction is produced by the external booking/checkout process.
	// A zero FinishedAt means the timestamp is absent.
	Transaction struct {
		ID         string
		Price      decimal.Decimal
		FinishedAt time.Time
	}

	Expense struct {
		ID          string
		Description string
		Amount      decimal.Decimal
	}
)

var (
	ErrEmptyTitle         = errors.New("empty title")
	ErrEmptyDetails       = errors.New("empty details")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrServiceNotFound    = errors.New("service not found")
	ErrInvalidGranularity = errors.New("invalid granularity")
)

func (s Service) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if strings.TrimSpace(s.Details) == "" {
		return ErrEmptyDetails
	}
	if len(s.Details) > 2000 {
		return errors.New("details too long (max 2000 characters)")
	}
	return nil
}

// String returns the value under key as a trimmed string, or "" when absent.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// Bool returns the value under key as a bool. Unparseable values are false.
func (r Record) Bool(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}

// first returns the first present value among keys.
func (r Record) first(keys ...string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return v
		}
	}
	return nil
}

func ServiceFromRecord(id string, r Record) Service {
	if id == "" {
		id = r.String("id")
	}
	return Service{
		ID:        id,
		Title:     r.String("title"),
		Details:   r.String("details"),
		Price:     CoerceAmount(r["price"]),
		Available: r.Bool("available"),
	}
}

// TransactionFromRecord decodes a transaction document. Timestamps without
// zone information are interpreted in loc.
func TransactionFromRecord(id string, r Record, loc *time.Location) Transaction {
	if id == "" {
		id = r.String("id")
	}
	return Transaction{
		ID:         id,
		Price:      CoerceAmount(r["price"]),
		FinishedAt: CoerceTime(r.first("finishedAt", "finished_at"), loc),
	}
}

func ExpenseFromRecord(id string, r Record) Expense {
	if id == "" {
		id = r.String("id")
	}
	return Expense{
		ID:          id,
		Description: r.String("description"),
		Amount:      CoerceAmount(r["amount"]),
	}
}

// ToRecord is the inverse of ServiceFromRecord.
func (s Service) ToRecord() Record {
	return Record{
		"id":        s.ID,
		"title":     s.Title,
		"details":   s.Details,
		"price":     s.Price.String(),
		"available": s.Available,
	}
}
