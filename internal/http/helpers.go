package http

import (
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"bizdash/internal/core"
)

// RoleCookie holds the signed-in user's role. Only "admin" may delete.
const RoleCookie = "userRole"

func formatPeso(d decimal.Decimal) string {
	return core.FormatPeso(d)
}

// toFloat converts an amount for JSON and chart output.
func toFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// sanitizeInput removes control characters (except tab and newlines) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// roleFromRequest returns the userRole cookie value unchanged, or "".
func roleFromRequest(r *http.Request) string {
	c, err := r.Cookie(RoleCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func canDelete(r *http.Request) bool {
	return core.CanDelete(roleFromRequest(r))
}

func itoa(n int) string {
	return humanize.Comma(int64(n))
}
