package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPaid             Status = "Pagada"
	StatusPendingPayment   Status = "Pendiente de pago"
	StatusFixedInstallment Status = "Cuota Fija"
	StatusPaymentPlan      Status = "Plan de pago"
	StatusCancelled        Status = "Anulada"
)

// DateLayout is the external dd/mm/yyyy text form used by records and criteria setters.
const DateLayout = "02/01/2006"

// parseLayout also accepts one-digit day and month fields.
const parseLayout = "2/1/2006"

// DateSentinel is the placeholder a UI shows for an unset date.
const DateSentinel = "día/mes/año"

type (
	Status string

	Date struct {
		time.Time
	}

	// Record is one billing entry. Date keeps the issue date text as
	// received so that records with missing or malformed dates survive
	// caching and can still be listed.
	Record struct {
		ID     string          `json:"id"`
		Status Status          `json:"status"`
		Date   string          `json:"date"`
		Amount decimal.Decimal `json:"amount"`
	}

	// FilterCriteria holds the user-selected constraints. Nil pointers and
	// an empty status list mean "no restriction".
	FilterCriteria struct {
		Statuses  []Status
		StartDate *Date
		EndDate   *Date
		MinAmount *decimal.Decimal
		MaxAmount *decimal.Decimal
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidDateText = errors.New("invalid date text")
	ErrEmptyID         = errors.New("empty record id")
)

// Statuses returns the closed set of billing statuses in display order.
func Statuses() []Status {
	return []Status{
		StatusPaid,
		StatusPendingPayment,
		StatusFixedInstallment,
		StatusPaymentPlan,
		StatusCancelled,
	}
}

// IsValid reports whether s belongs to the closed status set.
func (s Status) IsValid() bool {
	switch s {
	case StatusPaid, StatusPendingPayment, StatusFixedInstallment, StatusPaymentPlan, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus matches a label case-insensitively against the closed set.
func ParseStatus(label string) (Status, error) {
	label = strings.TrimSpace(label)
	for _, s := range Statuses() {
		if strings.EqualFold(label, string(s)) {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses dd/mm/yyyy text into a calendar date. Day and month
// may be written with one digit, as in 5/3/2024.
func ParseDate(text string) (Date, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Date{}, ErrInvalidDateText
	}
	t, err := time.Parse(parseLayout, text)
	if err != nil {
		return Date{}, ErrInvalidDateText
	}
	return Date{Time: t}, nil
}

// ParseOptionalDate normalizes criteria input: empty text and the sentinel
// both mean "absent" and yield a nil date.
func ParseOptionalDate(text string) (*Date, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == DateSentinel {
		return nil, nil
	}
	d, err := ParseDate(text)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// String renders the date in dd/mm/yyyy form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// IssueDate parses the record's date text. The second result is false
// when the text is empty or not a valid dd/mm/yyyy date.
func (r Record) IssueDate() (Date, bool) {
	d, err := ParseDate(r.Date)
	if err != nil {
		return Date{}, false
	}
	return d, true
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if r.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// IsEmpty reports whether no criterion is set.
func (c FilterCriteria) IsEmpty() bool {
	return len(c.Statuses) == 0 &&
		c.StartDate == nil &&
		c.EndDate == nil &&
		c.MinAmount == nil &&
		c.MaxAmount == nil
}

// Clone returns a deep copy so snapshots never share mutable state.
func (c FilterCriteria) Clone() FilterCriteria {
	out := FilterCriteria{}
	if len(c.Statuses) > 0 {
		out.Statuses = append([]Status(nil), c.Statuses...)
	}
	if c.StartDate != nil {
		d := *c.StartDate
		out.StartDate = &d
	}
	if c.EndDate != nil {
		d := *c.EndDate
		out.EndDate = &d
	}
	if c.MinAmount != nil {
		v := *c.MinAmount
		out.MinAmount = &v
	}
	if c.MaxAmount != nil {
		v := *c.MaxAmount
		out.MaxAmount = &v
	}
	return out
}

// ValidateBatch checks every record of a batch and reports the first
// offending index.
func ValidateBatch(records []Record) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return &RecordError{Index: i, ID: r.ID, Err: err}
		}
	}
	return nil
}

// RecordError locates a validation failure inside a batch.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %q at index %d: %v", e.ID, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
