package google

import (
	"fmt"
	"strings"

	"bizdash/internal/core"
)

// parseRecords converts a values matrix (as returned by the Sheets API) into
// records keyed by the header row. Blank rows are skipped; short rows leave
// the trailing keys absent.
func parseRecords(values [][]any) []core.Record {
	header := headerOf(values)
	if len(header) == 0 {
		return nil
	}
	out := make([]core.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, recordFor(header, row))
	}
	return out
}

func headerOf(values [][]any) []string {
	if len(values) == 0 {
		return nil
	}
	return toStrings(values[0])
}

func recordFor(header []string, row []any) core.Record {
	r := make(core.Record, len(header))
	for i, key := range header {
		if key == "" || i >= len(row) {
			continue
		}
		if s, ok := row[i].(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		r[key] = row[i]
	}
	return r
}

// rowFor lays a record out in header order. Unknown columns are left blank.
func rowFor(header []string, r core.Record) []any {
	row := make([]any, len(header))
	for i, key := range header {
		v, ok := r[key]
		if !ok || v == nil {
			row[i] = ""
			continue
		}
		row[i] = v
	}
	return row
}

// findRow returns the 1-based sheet row holding id, or -1.
func findRow(values [][]any, id string) int {
	col := indexOf(headerOf(values), "id")
	if col < 0 || strings.TrimSpace(id) == "" {
		return -1
	}
	for i := 1; i < len(values); i++ {
		if col < len(values[i]) && strings.TrimSpace(fmt.Sprint(values[i][col])) == id {
			return i + 1
		}
	}
	return -1
}

func isBlank(row []any) bool {
	for _, v := range row {
		if strings.TrimSpace(fmt.Sprint(v)) != "" {
			return false
		}
	}
	return true
}

func toRow(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}
