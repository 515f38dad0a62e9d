package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

type (
	// Granularity is the requested bucketing period.
	Granularity string

	// Bucket is a named time period with its accumulated revenue.
	Bucket struct {
		Label   string
		Revenue decimal.Decimal
	}

	// Chart is the ordered bucket sequence for one granularity.
	Chart struct {
		Granularity Granularity
		Buckets     []Bucket
		Total       decimal.Decimal
	}

	// LabelFormat renders bucket keys. Bucket keys are also display strings,
	// so any change to a format must ship as a new version.
	LabelFormat struct {
		Version string
		Day     func(t time.Time) string
		Week    func(n int) string
		Month   func(t time.Time) string
	}
)

// LabelsV1 reproduces the en-US strings of the original dashboard:
// "1/2/2024", "Week 3", "January 2024".
var LabelsV1 = LabelFormat{
	Version: "v1",
	Day: func(t time.Time) string {
		return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
	},
	Week: func(n int) string {
		return fmt.Sprintf("Week %d", n)
	},
	Month: func(t time.Time) string {
		return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
	},
}

// Granularities lists the recognized values in selector order.
func Granularities() []Granularity {
	return []Granularity{Daily, Weekly, Monthly}
}

func (g Granularity) String() string {
	return string(g)
}

func (g Granularity) IsValid() bool {
	switch g {
	case Daily, Weekly, Monthly:
		return true
	default:
		return false
	}
}

// Title returns the capitalized name used in headings ("Daily").
func (g Granularity) Title() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
	return g, nil
}

// WeekNumber returns the approximate week number used for weekly buckets:
//
//	ceil(((t - Jan 1) in days + weekday(Jan 1) + 1) / 7)
//
// The day difference is fractional (time of day counts) and Sunday is
// weekday 0. This is not ISO-8601; it is kept as-is so weekly buckets stay
// comparable with existing dashboards.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := float64(t.Sub(jan1)) / float64(24*time.Hour)
	return int(math.Ceil((days + float64(jan1.Weekday()) + 1) / 7))
}

// Bucketer groups transactions into calendar buckets. The zero value uses
// the system clock, the local time zone and LabelsV1.
type Bucketer struct {
	Clock    Clock
	Location *time.Location
	Labels   LabelFormat
}

func NewBucketer(clock Clock, loc *time.Location) Bucketer {
	return Bucketer{Clock: clock, Location: loc, Labels: LabelsV1}
}

// Bucket accumulates transaction prices per period label. Buckets are
// emitted in first-seen order of their labels in txs, which is the order
// the chart renders them. Transactions without a timestamp fall into the
// bucket of the clock's current instant. An unrecognized granularity
// yields an empty chart.
func (b Bucketer) Bucket(txs []Transaction, g Granularity) Chart {
	chart := Chart{Granularity: g, Total: decimal.Zero}
	if !g.IsValid() {
		return chart
	}
	index := make(map[string]int, len(txs))
	for _, tx := range txs {
		label := b.label(b.timestamp(tx), g)
		i, ok := index[label]
		if !ok {
			i = len(chart.Buckets)
			index[label] = i
			chart.Buckets = append(chart.Buckets, Bucket{Label: label, Revenue: decimal.Zero})
		}
		chart.Buckets[i].Revenue = chart.Buckets[i].Revenue.Add(tx.Price)
	}
	for _, bk := range chart.Buckets {
		chart.Total = chart.Total.Add(bk.Revenue)
	}
	return chart
}

func (b Bucketer) timestamp(tx Transaction) time.Time {
	loc := b.Location
	if loc == nil {
		loc = time.Local
	}
	if tx.FinishedAt.IsZero() {
		clock := b.Clock
		if clock == nil {
			clock = SystemClock
		}
		return clock.Now().In(loc)
	}
	return tx.FinishedAt.In(loc)
}

func (b Bucketer) label(t time.Time, g Granularity) string {
	labels := b.Labels
	if labels.Day == nil || labels.Week == nil || labels.Month == nil {
		labels = LabelsV1
	}
	switch g {
	case Weekly:
		return labels.Week(WeekNumber(t))
	case Monthly:
		return labels.Month(t)
	default:
		return labels.Day(t)
	}
}

// Clone returns a copy that does not share the bucket slice.
func (c Chart) Clone() Chart {
	out := c
	if c.Buckets != nil {
		out.Buckets = append([]Bucket(nil), c.Buckets...)
	}
	return out
}
