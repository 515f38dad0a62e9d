package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceFromRecord(t *testing.T) {
	s := ServiceFromRecord("svc-1", Record{
		"title":     "  Haircut ",
		"details":   "Basic cut",
		"price":     "250",
		"available": "true",
	})

	assert.Equal(t, "svc-1", s.ID)
	assert.Equal(t, "Haircut", s.Title)
	assert.Equal(t, "Basic cut", s.Details)
	assert.True(t, s.Price.Equal(dec("250")))
	assert.True(t, s.Available)
}

func TestServiceFromRecordMalformed(t *testing.T) {
	s := ServiceFromRecord("", Record{"id": "from-doc", "price": "abc", "available": "maybe"})

	assert.Equal(t, "from-doc", s.ID)
	assert.True(t, s.Price.IsZero())
	assert.False(t, s.Available)

	missing := ServiceFromRecord("x", Record{})
	assert.True(t, missing.Price.IsZero())
	assert.Empty(t, missing.Title)
}

func TestServiceRecordRoundTrip(t *testing.T) {
	in := Service{ID: "a", Title: "Massage", Details: "60 minutes", Price: dec("799.50"), Available: true}
	out := ServiceFromRecord("", in.ToRecord())

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Title, out.Title)
	assert.True(t, in.Price.Equal(out.Price))
	assert.Equal(t, in.Available, out.Available)
}

func TestTransactionFromRecord(t *testing.T) {
	tx := TransactionFromRecord("t1", Record{"price": 150, "finished_at": "2024-01-01"}, time.UTC)

	assert.True(t, tx.Price.Equal(dec("150")))
	assert.True(t, tx.FinishedAt.Equal(utcDate(2024, 1, 1)))

	absent := TransactionFromRecord("t2", Record{"price": 1}, time.UTC)
	assert.True(t, absent.FinishedAt.IsZero())
}

func TestExpenseFromRecord(t *testing.T) {
	e := ExpenseFromRecord("e1", Record{"description": "Rent", "amount": "1200.75"})

	assert.Equal(t, "Rent", e.Description)
	assert.True(t, e.Amount.Equal(dec("1200.75")))
}

func TestServiceValidate(t *testing.T) {
	valid := Service{Title: "Haircut", Details: "Basic cut", Price: dec("1")}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name string
		mut  func(*Service)
		want error
	}{
		{"empty title", func(s *Service) { s.Title = " " }, ErrEmptyTitle},
		{"empty details", func(s *Service) { s.Details = "" }, ErrEmptyDetails},
	}
	for _, tc := range cases {
		s := valid
		tc.mut(&s)
		assert.ErrorIs(t, s.Validate(), tc.want, tc.name)
	}

	long := valid
	long.Title = strings.Repeat("x", 201)
	assert.Error(t, long.Validate())
	long = valid
	long.Details = strings.Repeat("x", 2001)
	assert.Error(t, long.Validate())
}

func TestCanDelete(t *testing.T) {
	assert.True(t, CanDelete("admin"))
	for _, role := range []string{"", "staff", "Admin", " admin"} {
		assert.False(t, CanDelete(role), "role %q", role)
	}
}
