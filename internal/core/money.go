// Package core provides money and timestamp coercion utilities.
//
// Documents coming from a record store are loosely typed: a price may be a
// number, a numeric string, garbage or missing altogether. The functions
// in this file normalize those values so the aggregation code never has to
// deal with errors.
package core

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// CoerceAmount converts an arbitrary document value to a decimal amount.
//
// Missing, empty, non-numeric, NaN and infinite values become zero.
// Booleans follow number conversion (true is 1). Numeric strings are parsed
// exactly rather than through float64.
//
// Examples:
//
//	CoerceAmount(100)     -> 100
//	CoerceAmount("12.50") -> 12.5
//	CoerceAmount("abc")   -> 0
//	CoerceAmount(nil)     -> 0
func CoerceAmount(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	case json.Number:
		return CoerceAmount(x.String())
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// CoerceTime converts an arbitrary document value to a timestamp. Values
// that cannot be interpreted yield the zero time, which callers treat as
// "absent". Strings without zone information are read in loc.
//
// Besides time.Time, strings and unix seconds, a {seconds, nanoseconds}
// map (the shape document stores use for native timestamps) is accepted.
func CoerceTime(v any, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	switch x := v.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return x
	case *time.Time:
		if x == nil {
			return time.Time{}
		}
		return *x
	case string:
		if strings.TrimSpace(x) == "" {
			return time.Time{}
		}
		v = strings.TrimSpace(x)
	case json.Number:
		secs, err := x.Int64()
		if err != nil {
			return time.Time{}
		}
		return time.Unix(secs, 0).In(loc)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}
		}
		return time.Unix(int64(x), 0).In(loc)
	case map[string]any:
		secs, ok := x["seconds"]
		if !ok {
			return time.Time{}
		}
		return time.Unix(cast.ToInt64(secs), cast.ToInt64(x["nanoseconds"])).In(loc)
	}
	t, err := cast.ToTimeInDefaultLocationE(v, loc)
	if err == nil {
		return t
	}
	if s, ok := v.(string); ok {
		for _, layout := range sheetDateLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// sheetDateLayouts are the month-first shapes a spreadsheet renders native
// date cells in.
var sheetDateLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParsePrice parses a user-entered price. Both dot (12.34) and comma
// (12,34) decimal separators are accepted. Empty and negative input is
// rejected with ErrInvalidPrice.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}

// FormatPeso renders an amount as "₱1,234.5": thousands separators and at
// most two decimals. Negative amounts become "-₱820".
func FormatPeso(d decimal.Decimal) string {
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}
	s := "₱" + humanize.CommafWithDigits(cast.ToFloat64(d.StringFixed(2)), 2)
	if neg {
		return "-" + s
	}
	return s
}
