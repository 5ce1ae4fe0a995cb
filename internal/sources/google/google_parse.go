package google

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"facturas/internal/core"
	"facturas/internal/sources"
)

// parseRows converts a values matrix into records. Blank rows are skipped,
// and so is a first row whose amount cell is not a number (a header). Any
// other bad row fails the whole batch.
func parseRows(values [][]interface{}) ([]core.Record, error) {
	out := make([]core.Record, 0, len(values))
	for i, row := range values {
		cols := toStrings(row)
		if isBlank(cols) {
			continue
		}
		id := safeGet(cols, 0)
		statusText := safeGet(cols, 1)
		date := safeGet(cols, 2)

		var amountCell interface{}
		if len(row) > 3 {
			amountCell = row[3]
		}
		amount, err := parseAmountCell(amountCell)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: row %d: amount %q: %v", sources.ErrMalformedPayload, i+1, safeGet(cols, 3), err)
		}
		status, err := core.ParseStatus(statusText)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: status %q: %v", sources.ErrMalformedPayload, i+1, statusText, err)
		}
		r := core.Record{ID: id, Status: status, Date: date, Amount: amount}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", sources.ErrMalformedPayload, i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// parseAmountCell reads an amount from an unformatted cell: numeric cells
// arrive as float64, cells typed as text keep their formatting.
func parseAmountCell(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return decimal.Zero, core.ErrInvalidAmount
		}
		return decimal.NewFromFloat(n), nil
	case int:
		if n < 0 {
			return decimal.Zero, core.ErrInvalidAmount
		}
		return decimal.NewFromInt(int64(n)), nil
	case string:
		return core.ParseAmount(cleanAmount(n))
	case nil:
		return decimal.Zero, core.ErrInvalidAmount
	default:
		return core.ParseAmount(cleanAmount(fmt.Sprint(n)))
	}
}

// cleanAmount strips the currency symbol and thousands separators from a
// text amount such as "1.234,50 €" or "1,234.50". When both separators
// appear the last one is the decimal mark. A lone separator followed by
// exactly three digits groups thousands, as in "1.234 €".
func cleanAmount(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '€', ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return strings.ReplaceAll(s, ".", "")
		}
		return strings.ReplaceAll(s, ",", "")
	case lastDot >= 0:
		return dropGrouping(s, ".")
	case lastComma >= 0:
		return dropGrouping(s, ",")
	}
	return s
}

// dropGrouping removes sep when it separates thousands: it appears more
// than once, or once with exactly three digits after it.
func dropGrouping(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	i := strings.Index(s, sep)
	if i > 0 && len(s)-i-1 == 3 {
		return s[:i] + s[i+1:]
	}
	return s
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
