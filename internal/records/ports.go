package records

import (
	"context"

	"bizdash/internal/core"
)

// Ports for outbound adapters. Every read pulls the whole collection: no
// filtering, ordering or pagination is requested from the store.
type (
	ServiceLister interface {
		ListServices(ctx context.Context) ([]core.Service, error)
	}

	// ServiceWriter mutates the services collection. Unknown IDs yield
	// core.ErrServiceNotFound.
	ServiceWriter interface {
		// CreateService stores s and returns the assigned document ID.
		CreateService(ctx context.Context, s core.Service) (string, error)
		UpdateService(ctx context.Context, s core.Service) error
		SetAvailability(ctx context.Context, id string, available bool) error
		DeleteService(ctx context.Context, id string) error
	}

	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}

	// Reader is the read side used by the dashboard.
	Reader interface {
		ServiceLister
		TransactionLister
		ExpenseLister
	}

	Store interface {
		Reader
		ServiceWriter
	}
)
