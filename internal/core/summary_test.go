package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	services := []Service{
		{ID: "1", Available: true},
		{ID: "2", Available: false},
		{ID: "3", Available: true},
		{ID: "4", Available: true},
		{ID: "5", Available: false},
	}
	txs := []Transaction{{Price: dec("600")}, {Price: dec("400")}}
	expenses := []Expense{{Amount: dec("250")}, {Amount: dec("150")}}

	got := Summarize(services, txs, expenses)

	assert.Equal(t, 5, got.TotalServices)
	assert.Equal(t, 3, got.AvailableServices)
	assert.True(t, got.TotalRevenue.Equal(dec("1000")))
	assert.True(t, got.TotalExpenses.Equal(dec("400")))
	assert.True(t, got.NetIncome.Equal(dec("600")))
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, nil, nil)

	assert.Zero(t, got.TotalServices)
	assert.Zero(t, got.AvailableServices)
	assert.True(t, got.TotalRevenue.IsZero())
	assert.True(t, got.TotalExpenses.IsZero())
	assert.True(t, got.NetIncome.IsZero())
}

func TestSummarizeNegativeNet(t *testing.T) {
	got := Summarize(nil,
		[]Transaction{{Price: dec("100")}},
		[]Expense{{Amount: dec("250.50")}},
	)
	assert.True(t, got.NetIncome.Equal(dec("-150.5")))
}

func TestSummarizeMalformedAmounts(t *testing.T) {
	txs := []Transaction{
		TransactionFromRecord("a", Record{"price": "abc"}, nil),
		TransactionFromRecord("b", Record{}, nil),
		TransactionFromRecord("c", Record{"price": "12.5"}, nil),
	}
	expenses := []Expense{
		ExpenseFromRecord("x", Record{"amount": nil}),
		ExpenseFromRecord("y", Record{"amount": 2}),
	}

	got := Summarize(nil, txs, expenses)

	assert.True(t, got.TotalRevenue.Equal(dec("12.5")))
	assert.True(t, got.TotalExpenses.Equal(dec("2")))
	assert.True(t, got.NetIncome.Equal(dec("10.5")))
}
