package core

import "github.com/shopspring/decimal"

// Summary holds the dashboard counters.
type Summary struct {
	TotalServices     int
	AvailableServices int
	TotalRevenue      decimal.Decimal
	TotalExpenses     decimal.Decimal
	NetIncome         decimal.Decimal
}

// Summarize computes the dashboard counters from the fetched collections.
// Amounts are already coerced at decode time, so malformed values count as 0.
func Summarize(services []Service, txs []Transaction, expenses []Expense) Summary {
	sum := Summary{
		TotalServices: len(services),
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, s := range services {
		if s.Available {
			sum.AvailableServices++
		}
	}
	for _, tx := range txs {
		sum.TotalRevenue = sum.TotalRevenue.Add(tx.Price)
	}
	for _, e := range expenses {
		sum.TotalExpenses = sum.TotalExpenses.Add(e.Amount)
	}
	sum.NetIncome = sum.TotalRevenue.Sub(sum.TotalExpenses)
	return sum
}
