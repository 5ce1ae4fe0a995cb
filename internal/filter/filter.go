// Package filter applies status, date and amount predicates to billing
// records. Everything here is pure: no state, no I/O, input order kept.
package filter

import (
	"github.com/shopspring/decimal"

	"facturas/internal/core"
)

// Apply returns the records of in that satisfy every criterion, in their
// original order. The input slice is never modified and the result never
// aliases it.
//
// Inverted ranges (min > max, start > end) are accepted and simply match
// nothing.
func Apply(in []core.Record, c core.FilterCriteria) []core.Record {
	out := make([]core.Record, 0, len(in))
	if c.IsEmpty() {
		return append(out, in...)
	}

	statuses := statusSet(c.Statuses)
	for _, r := range in {
		if !matchStatus(r, statuses) {
			continue
		}
		if !matchDate(r, c.StartDate, c.EndDate) {
			continue
		}
		if !matchAmount(r, c.MinAmount, c.MaxAmount) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MaxAmount returns the largest amount in records, or zero when empty.
func MaxAmount(records []core.Record) decimal.Decimal {
	max := decimal.Zero
	for _, r := range records {
		if r.Amount.GreaterThan(max) {
			max = r.Amount
		}
	}
	return max
}

func statusSet(statuses []core.Status) map[core.Status]struct{} {
	if len(statuses) == 0 {
		return nil
	}
	set := make(map[core.Status]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

func matchStatus(r core.Record, set map[core.Status]struct{}) bool {
	if set == nil {
		return true
	}
	_, ok := set[r.Status]
	return ok
}

// matchDate fails records without a parseable date as soon as any bound is set.
func matchDate(r core.Record, start, end *core.Date) bool {
	if start == nil && end == nil {
		return true
	}
	d, ok := r.IssueDate()
	if !ok {
		return false
	}
	if start != nil && d.Before(start.Time) {
		return false
	}
	if end != nil && d.After(end.Time) {
		return false
	}
	return true
}

func matchAmount(r core.Record, min, max *decimal.Decimal) bool {
	if min != nil && r.Amount.LessThan(*min) {
		return false
	}
	if max != nil && r.Amount.GreaterThan(*max) {
		return false
	}
	return true
}
