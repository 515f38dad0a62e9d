package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/internal/core"
)

func TestParseRecords(t *testing.T) {
	values := [][]any{
		{"id", "title", "details", "price", "available"},
		{"a", "Haircut", "Basic", 250.0, true},
		{"", "", "", "", ""},
		{"b", "Shave", "Hot towel", "abc", "FALSE"},
		{"c", "Short row"},
	}
	recs := parseRecords(values)
	require.Len(t, recs, 3)

	a := core.ServiceFromRecord("", recs[0])
	assert.Equal(t, "a", a.ID)
	assert.True(t, a.Price.Equal(core.CoerceAmount(250)))
	assert.True(t, a.Available)

	b := core.ServiceFromRecord("", recs[1])
	assert.True(t, b.Price.IsZero())
	assert.False(t, b.Available)

	_, hasPrice := recs[2]["price"]
	assert.False(t, hasPrice)
}

func TestParseRecordsEmpty(t *testing.T) {
	assert.Nil(t, parseRecords(nil))
	assert.Empty(t, parseRecords([][]any{{"id", "price"}}))
}

func TestParseTransactionsSheet(t *testing.T) {
	values := [][]any{
		{"price", "finishedAt"},
		{100.0, "2024-01-01 10:00:00"},
		{"30", ""},
	}
	recs := parseRecords(values)
	require.Len(t, recs, 2)

	tx := core.TransactionFromRecord("", recs[0], nil)
	assert.Equal(t, 2024, tx.FinishedAt.Year())
	assert.True(t, core.TransactionFromRecord("", recs[1], nil).FinishedAt.IsZero())
}

func TestParseTransactionsSheetDateCells(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	values := [][]any{
		{"price", "finishedAt"},
		{100.0, "1/2/2024 10:00:00"},
		{50.0, "12/31/2023"},
	}
	recs := parseRecords(values)
	require.Len(t, recs, 2)

	first := core.TransactionFromRecord("", recs[0], manila)
	assert.True(t, first.FinishedAt.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, manila)), "got %v", first.FinishedAt)

	second := core.TransactionFromRecord("", recs[1], manila)
	assert.True(t, second.FinishedAt.Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, manila)), "got %v", second.FinishedAt)

	chart := core.NewBucketer(core.FixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, manila)), manila).
		Bucket([]core.Transaction{first, second}, core.Daily)
	require.Len(t, chart.Buckets, 2)
	assert.Equal(t, "1/2/2024", chart.Buckets[0].Label)
	assert.Equal(t, "12/31/2023", chart.Buckets[1].Label)
}

func TestFindRow(t *testing.T) {
	values := [][]any{
		{"title", "id"},
		{"A", "x1"},
		{},
		{"B", " x2 "},
	}
	assert.Equal(t, 2, findRow(values, "x1"))
	assert.Equal(t, 4, findRow(values, "x2"))
	assert.Equal(t, -1, findRow(values, "missing"))
	assert.Equal(t, -1, findRow(values, ""))
	assert.Equal(t, -1, findRow([][]any{{"title"}}, "x1"))
}

func TestRowForFollowsHeader(t *testing.T) {
	header := []string{"available", "id", "extra", "price"}
	svc := core.Service{ID: "z", Title: "T", Details: "D", Price: core.CoerceAmount("12.5"), Available: true}

	row := rowFor(header, svc.ToRecord())
	assert.Equal(t, []any{true, "z", "", "12.5"}, row)
}

func TestRecordRoundTripThroughRow(t *testing.T) {
	svc := core.Service{ID: "id-1", Title: "Massage", Details: "60m", Price: core.CoerceAmount("799.5")}
	row := rowFor(ServiceColumns, svc.ToRecord())

	got := core.ServiceFromRecord("", recordFor(ServiceColumns, row))
	assert.Equal(t, svc.ID, got.ID)
	assert.Equal(t, svc.Title, got.Title)
	assert.True(t, svc.Price.Equal(got.Price))
	assert.False(t, got.Available)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{SpreadsheetID: "id"}.withDefaults()
	assert.Equal(t, "services", cfg.ServicesSheet)
	assert.Equal(t, "transactions", cfg.TransactionsSheet)
	assert.Equal(t, "expenses", cfg.ExpensesSheet)
	assert.NotNil(t, cfg.Location)
}
