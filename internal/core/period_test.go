package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testBucketer(now time.Time) Bucketer {
	return NewBucketer(FixedClock(now), time.UTC)
}

func labels(c Chart) []string {
	out := make([]string, 0, len(c.Buckets))
	for _, b := range c.Buckets {
		out = append(out, b.Label)
	}
	return out
}

func TestBucketDailyScenario(t *testing.T) {
	txs := []Transaction{
		{Price: dec("100"), FinishedAt: utcDate(2024, 1, 1)},
		{Price: dec("50"), FinishedAt: utcDate(2024, 1, 1)},
		{Price: dec("30"), FinishedAt: utcDate(2024, 1, 2)},
	}

	chart := testBucketer(utcDate(2024, 6, 1)).Bucket(txs, Daily)

	require.Len(t, chart.Buckets, 2)
	assert.Equal(t, "1/1/2024", chart.Buckets[0].Label)
	assert.True(t, chart.Buckets[0].Revenue.Equal(dec("150")))
	assert.Equal(t, "1/2/2024", chart.Buckets[1].Label)
	assert.True(t, chart.Buckets[1].Revenue.Equal(dec("30")))
	assert.True(t, chart.Total.Equal(dec("180")))
	assert.Equal(t, Daily, chart.Granularity)
}

func TestBucketFirstSeenOrder(t *testing.T) {
	txs := []Transaction{
		{Price: dec("1"), FinishedAt: utcDate(2024, 3, 10)},
		{Price: dec("2"), FinishedAt: utcDate(2024, 1, 5)},
		{Price: dec("3"), FinishedAt: utcDate(2024, 3, 10)},
		{Price: dec("4"), FinishedAt: utcDate(2023, 12, 31)},
	}
	b := testBucketer(utcDate(2024, 6, 1))

	assert.Equal(t, []string{"3/10/2024", "1/5/2024", "12/31/2023"}, labels(b.Bucket(txs, Daily)))
	assert.Equal(t, []string{"March 2024", "January 2024", "December 2023"}, labels(b.Bucket(txs, Monthly)))

	weekly := b.Bucket(txs, Weekly)
	assert.Equal(t, []string{"Week 11", "Week 1", "Week 53"}, labels(weekly))
	assert.True(t, weekly.Buckets[0].Revenue.Equal(dec("4")))
}

func TestBucketMonthlyLabels(t *testing.T) {
	txs := []Transaction{
		{Price: dec("10"), FinishedAt: time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)},
		{Price: dec("5"), FinishedAt: utcDate(2024, 2, 1)},
	}
	chart := testBucketer(utcDate(2024, 6, 1)).Bucket(txs, Monthly)

	require.Len(t, chart.Buckets, 1)
	assert.Equal(t, "February 2024", chart.Buckets[0].Label)
	assert.True(t, chart.Total.Equal(dec("15")))
}

func TestBucketUsesLocation(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	txs := []Transaction{
		// 20:00 UTC on Jan 1 is already Jan 2 in Manila.
		{Price: dec("10"), FinishedAt: time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)},
	}
	chart := NewBucketer(FixedClock(utcDate(2024, 6, 1)), manila).Bucket(txs, Daily)
	assert.Equal(t, []string{"1/2/2024"}, labels(chart))
}

func TestBucketMissingTimestampUsesClock(t *testing.T) {
	now := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	txs := []Transaction{
		{Price: dec("20")},
		{Price: dec("5"), FinishedAt: utcDate(2024, 5, 17)},
	}
	b := testBucketer(now)

	daily := b.Bucket(txs, Daily)
	require.Len(t, daily.Buckets, 1)
	assert.Equal(t, "5/17/2024", daily.Buckets[0].Label)
	assert.True(t, daily.Total.Equal(dec("25")))

	assert.Equal(t, []string{"May 2024"}, labels(b.Bucket(txs, Monthly)))
}

func TestBucketTotalsMatchSummary(t *testing.T) {
	txs := []Transaction{
		TransactionFromRecord("a", Record{"price": 100, "finishedAt": "2024-01-01T10:00:00Z"}, time.UTC),
		TransactionFromRecord("b", Record{"price": "abc", "finishedAt": "2024-01-08T10:00:00Z"}, time.UTC),
		TransactionFromRecord("c", Record{"finishedAt": "2024-02-08T10:00:00Z"}, time.UTC),
		TransactionFromRecord("d", Record{"price": "42.5"}, time.UTC),
		TransactionFromRecord("e", Record{"price": 7.25, "finishedAt": "2023-12-31T23:59:59Z"}, time.UTC),
	}
	summary := Summarize(nil, txs, nil)
	b := testBucketer(utcDate(2024, 6, 1))

	for _, g := range Granularities() {
		chart := b.Bucket(txs, g)
		sum := decimal.Zero
		for _, bk := range chart.Buckets {
			sum = sum.Add(bk.Revenue)
		}
		assert.True(t, sum.Equal(summary.TotalRevenue), "granularity %s: buckets sum %s, revenue %s", g, sum, summary.TotalRevenue)
		assert.True(t, chart.Total.Equal(summary.TotalRevenue), "granularity %s", g)
	}
	assert.True(t, summary.TotalRevenue.Equal(dec("149.75")))
}

func TestBucketDistinctKeys(t *testing.T) {
	txs := []Transaction{
		{Price: dec("1"), FinishedAt: utcDate(2024, 1, 1)},
		{Price: dec("1"), FinishedAt: utcDate(2024, 1, 3)},
		{Price: dec("1"), FinishedAt: utcDate(2024, 1, 9)},
		{Price: dec("1"), FinishedAt: utcDate(2024, 2, 1)},
	}
	b := testBucketer(utcDate(2024, 6, 1))

	for _, g := range Granularities() {
		seen := map[string]bool{}
		var order []string
		for _, tx := range txs {
			l := b.label(tx.FinishedAt, g)
			if !seen[l] {
				seen[l] = true
				order = append(order, l)
			}
		}
		assert.Equal(t, order, labels(b.Bucket(txs, g)), "granularity %s", g)
	}
}

func TestBucketIdempotent(t *testing.T) {
	txs := []Transaction{
		{Price: dec("3"), FinishedAt: utcDate(2024, 4, 1)},
		{Price: dec("4")},
	}
	b := testBucketer(utcDate(2024, 4, 2))
	for _, g := range Granularities() {
		assert.Equal(t, b.Bucket(txs, g), b.Bucket(txs, g))
	}
}

func TestBucketInvalidGranularity(t *testing.T) {
	chart := testBucketer(utcDate(2024, 1, 1)).Bucket([]Transaction{{Price: dec("1")}}, Granularity("yearly"))
	assert.Empty(t, chart.Buckets)
	assert.True(t, chart.Total.IsZero())
}

func TestWeekNumber(t *testing.T) {
	cases := []struct {
		at   time.Time
		want int
	}{
		// 2024-01-01 is a Monday (weekday 1).
		{utcDate(2024, 1, 1), 1},
		{utcDate(2024, 1, 5), 1},
		{time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), 1},
		{utcDate(2024, 1, 6), 1},
		{time.Date(2024, 1, 6, 0, 0, 1, 0, time.UTC), 2},
		{utcDate(2024, 1, 7), 2},
		{utcDate(2024, 3, 10), 11},
		// 2023-01-01 is a Sunday (weekday 0).
		{utcDate(2023, 1, 1), 1},
		{utcDate(2023, 1, 7), 1},
		{utcDate(2023, 1, 8), 2},
		{utcDate(2023, 12, 31), 53},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WeekNumber(tc.at), "week of %s", tc.at)
	}
}

func TestParseGranularity(t *testing.T) {
	for _, in := range []string{"daily", "Weekly", " MONTHLY "} {
		g, err := ParseGranularity(in)
		require.NoError(t, err)
		assert.True(t, g.IsValid())
	}
	_, err := ParseGranularity("yearly")
	assert.ErrorIs(t, err, ErrInvalidGranularity)
	_, err = ParseGranularity("")
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestGranularityTitle(t *testing.T) {
	assert.Equal(t, "Daily", Daily.Title())
	assert.Equal(t, "Monthly", Monthly.Title())
	assert.Equal(t, "", Granularity("").Title())
}
