package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"bizdash/internal/core"
	"bizdash/internal/records"
)

// Seed file names inside the data directory.
const (
	ServicesFile     = "services.json"
	TransactionsFile = "transactions.json"
	ExpensesFile     = "expenses.json"
)

var _ records.Store = (*Store)(nil)

// Store keeps all three collections in memory, in insertion order.
type Store struct {
	mu       sync.Mutex
	services []core.Service
	txs      []core.Transaction
	expenses []core.Expense
}

func New(services []core.Service, txs []core.Transaction, expenses []core.Expense) *Store {
	return &Store{
		services: append([]core.Service(nil), services...),
		txs:      append([]core.Transaction(nil), txs...),
		expenses: append([]core.Expense(nil), expenses...),
	}
}

// NewFromDir seeds the store from JSON arrays of raw documents in base.
// Missing files mean empty collections; malformed field values are coerced
// by the core decoders. Timestamps without a zone are read in loc.
func NewFromDir(base string, loc *time.Location) (*Store, error) {
	svcDocs, err := ReadDocs(filepath.Join(base, ServicesFile))
	if err != nil {
		return nil, err
	}
	txDocs, err := ReadDocs(filepath.Join(base, TransactionsFile))
	if err != nil {
		return nil, err
	}
	expDocs, err := ReadDocs(filepath.Join(base, ExpensesFile))
	if err != nil {
		return nil, err
	}

	s := &Store{}
	for _, r := range svcDocs {
		svc := core.ServiceFromRecord("", r)
		if svc.ID == "" {
			svc.ID = uuid.NewString()
		}
		s.services = append(s.services, svc)
	}
	for i, r := range txDocs {
		tx := core.TransactionFromRecord("", r, loc)
		if tx.ID == "" {
			tx.ID = fmt.Sprintf("tx-%d", i+1)
		}
		s.txs = append(s.txs, tx)
	}
	for i, r := range expDocs {
		e := core.ExpenseFromRecord("", r)
		if e.ID == "" {
			e.ID = fmt.Sprintf("exp-%d", i+1)
		}
		s.expenses = append(s.expenses, e)
	}
	return s, nil
}

// ReadDocs decodes a JSON array of documents. A missing file yields no
// documents. Numbers are kept as json.Number so prices parse exactly.
func ReadDocs(path string) ([]core.Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var docs []core.Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return docs, nil
}

func (s *Store) ListServices(_ context.Context) ([]core.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Service(nil), s.services...), nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) CreateService(_ context.Context, svc core.Service) (string, error) {
	if err := svc.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.ID = uuid.NewString()
	s.services = append(s.services, svc)
	return svc.ID, nil
}

func (s *Store) UpdateService(_ context.Context, svc core.Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(svc.ID)
	if i < 0 {
		return core.ErrServiceNotFound
	}
	s.services[i] = svc
	return nil
}

func (s *Store) SetAvailability(_ context.Context, id string, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrServiceNotFound
	}
	s.services[i].Available = available
	return nil
}

func (s *Store) DeleteService(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrServiceNotFound
	}
	s.services = append(s.services[:i], s.services[i+1:]...)
	return nil
}

// AddTransaction appends a transaction. Transactions are written by the
// checkout flow outside this application; this exists for seeding.
func (s *Store) AddTransaction(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
}

func (s *Store) indexOf(id string) int {
	for i, svc := range s.services {
		if svc.ID == id {
			return i
		}
	}
	return -1
}
