package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/core"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amountPtr(s string) *decimal.Decimal {
	d := amount(s)
	return &d
}

func datePtr(y, m, d int) *core.Date {
	date := core.NewDate(y, m, d)
	return &date
}

func scenario() []core.Record {
	return []core.Record{
		{ID: "1", Status: core.StatusPaid, Date: "01/01/2024", Amount: amount("50")},
		{ID: "2", Status: core.StatusCancelled, Date: "15/06/2024", Amount: amount("120")},
	}
}

func sample() []core.Record {
	return []core.Record{
		{ID: "a", Status: core.StatusPaid, Date: "01/01/2024", Amount: amount("50")},
		{ID: "b", Status: core.StatusCancelled, Date: "15/06/2024", Amount: amount("120")},
		{ID: "c", Status: core.StatusPendingPayment, Date: "", Amount: amount("75.25")},
		{ID: "d", Status: core.StatusFixedInstallment, Date: "garbage", Amount: amount("0")},
		{ID: "e", Status: core.StatusPaymentPlan, Date: "31/12/2023", Amount: amount("300")},
		{ID: "f", Status: core.StatusPaid, Date: "01/02/2024", Amount: amount("60")},
	}
}

func ids(records []core.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestApply_Scenarios(t *testing.T) {
	t.Run("status paid keeps first record only", func(t *testing.T) {
		got := Apply(scenario(), core.FilterCriteria{Statuses: []core.Status{core.StatusPaid}})
		assert.Equal(t, []string{"1"}, ids(got))
	})

	t.Run("amount range keeps second record only", func(t *testing.T) {
		got := Apply(scenario(), core.FilterCriteria{MinAmount: amountPtr("60"), MaxAmount: amountPtr("200")})
		assert.Equal(t, []string{"2"}, ids(got))
	})

	t.Run("start date excludes earlier and undated records", func(t *testing.T) {
		records := append(scenario(), core.Record{ID: "3", Status: core.StatusPaid, Date: "", Amount: amount("10")})
		got := Apply(records, core.FilterCriteria{StartDate: datePtr(2024, 2, 1)})
		assert.Equal(t, []string{"2"}, ids(got))
	})
}

func TestApply_Predicates(t *testing.T) {
	tests := []struct {
		name     string
		criteria core.FilterCriteria
		want     []string
	}{
		{
			name:     "multiple statuses",
			criteria: core.FilterCriteria{Statuses: []core.Status{core.StatusPaid, core.StatusPaymentPlan}},
			want:     []string{"a", "e", "f"},
		},
		{
			name:     "end date inclusive",
			criteria: core.FilterCriteria{EndDate: datePtr(2024, 1, 1)},
			want:     []string{"a", "e"},
		},
		{
			name:     "start date inclusive",
			criteria: core.FilterCriteria{StartDate: datePtr(2024, 2, 1)},
			want:     []string{"b", "f"},
		},
		{
			name:     "closed date range",
			criteria: core.FilterCriteria{StartDate: datePtr(2024, 1, 1), EndDate: datePtr(2024, 2, 1)},
			want:     []string{"a", "f"},
		},
		{
			name:     "min amount inclusive",
			criteria: core.FilterCriteria{MinAmount: amountPtr("75.25")},
			want:     []string{"b", "c", "e"},
		},
		{
			name:     "max amount inclusive",
			criteria: core.FilterCriteria{MaxAmount: amountPtr("60")},
			want:     []string{"a", "d", "f"},
		},
		{
			name:     "undated records pass without date bounds",
			criteria: core.FilterCriteria{Statuses: []core.Status{core.StatusPendingPayment, core.StatusFixedInstallment}},
			want:     []string{"c", "d"},
		},
		{
			name: "all predicates combined",
			criteria: core.FilterCriteria{
				Statuses:  []core.Status{core.StatusPaid},
				StartDate: datePtr(2024, 1, 15),
				MinAmount: amountPtr("55"),
				MaxAmount: amountPtr("65"),
			},
			want: []string{"f"},
		},
		{
			name:     "inverted amount range yields nothing",
			criteria: core.FilterCriteria{MinAmount: amountPtr("200"), MaxAmount: amountPtr("100")},
			want:     []string{},
		},
		{
			name:     "inverted date range yields nothing",
			criteria: core.FilterCriteria{StartDate: datePtr(2024, 6, 1), EndDate: datePtr(2024, 1, 1)},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sample(), tt.criteria)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_EmptyCriteriaIsIdentity(t *testing.T) {
	in := sample()
	got := Apply(in, core.FilterCriteria{})
	assert.Equal(t, in, got)

	got[0].ID = "mutated"
	assert.Equal(t, "a", in[0].ID, "result must not alias the input")
}

func TestApply_DateBoundsAcceptOneDigitFields(t *testing.T) {
	in := []core.Record{
		{ID: "short", Status: core.StatusPaid, Date: "5/3/2024", Amount: amount("10")},
		{ID: "before", Status: core.StatusPaid, Date: "9/12/2023", Amount: amount("10")},
	}

	got := Apply(in, core.FilterCriteria{StartDate: datePtr(2024, 1, 1)})
	require.Len(t, got, 1)
	assert.Equal(t, "short", got[0].ID)
}

func TestApply_EmptyInput(t *testing.T) {
	got := Apply(nil, core.FilterCriteria{Statuses: []core.Status{core.StatusPaid}})
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Apply([]core.Record{}, core.FilterCriteria{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply_SubsetPreservesOrderAndIsIdempotent(t *testing.T) {
	criteria := []core.FilterCriteria{
		{},
		{Statuses: []core.Status{core.StatusPaid}},
		{StartDate: datePtr(2024, 1, 1)},
		{MinAmount: amountPtr("50"), MaxAmount: amountPtr("120")},
		{Statuses: []core.Status{core.StatusCancelled, core.StatusPaymentPlan}, EndDate: datePtr(2024, 12, 31)},
	}

	in := sample()
	for i, c := range criteria {
		once := Apply(in, c)
		twice := Apply(once, c)
		assert.Equal(t, once, twice, "criteria %d not idempotent", i)

		// every kept record appears in the input after the previous kept one
		pos := -1
		for _, r := range once {
			found := -1
			for j := pos + 1; j < len(in); j++ {
				if in[j].ID == r.ID {
					found = j
					break
				}
			}
			require.NotEqual(t, -1, found, "criteria %d: %s out of order or not in input", i, r.ID)
			pos = found
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := sample()
	before := append([]core.Record(nil), in...)
	_ = Apply(in, core.FilterCriteria{Statuses: []core.Status{core.StatusPaid}})
	assert.Equal(t, before, in)
}

func TestMaxAmount(t *testing.T) {
	assert.True(t, MaxAmount(scenario()).Equal(amount("120")))
	assert.True(t, MaxAmount(nil).Equal(decimal.Zero))
	assert.True(t, MaxAmount(sample()).Equal(amount("300")))
}
