package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

const (
	Housing   Category = "Housing"
	Food      Category = "Food"
	Transport Category = "Transport"
	Leisure   Category = "Leisure"
	Health    Category = "Health"
	Other     Category = "Other"
)

// DateLayout is the calendar date format used by every persisted ledger.
const DateLayout = "2006-01-02"

type (
	// Kind tells whether a transaction brings money in or takes it out.
	Kind string

	// Category is one of the fixed spending buckets.
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger row. Records are never mutated once
	// appended.
	Transaction struct {
		Date        Date
		Description string
		Amount      Money
		Category    Category
		Kind        Kind
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidCategory = errors.New("unrecognized category")
	ErrInvalidKind     = errors.New("unrecognized kind")
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{Housing, Food, Transport, Leisure, Health, Other}
}

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{Income, Expense}
}

// Legacy labels written by the Portuguese edition of the dashboard.
var (
	categoryAliases = map[string]Category{
		"moradia":     Housing,
		"alimentação": Food,
		"alimentacao": Food,
		"transporte":  Transport,
		"lazer":       Leisure,
		"saúde":       Health,
		"saude":       Health,
		"outros":      Other,
	}
	kindAliases = map[string]Kind{
		"entrada": Income,
		"saída":   Expense,
		"saida":   Expense,
	}
)

// ParseCategory resolves a canonical or legacy category label.
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if strings.ToLower(string(c)) == v {
			return c, nil
		}
	}
	if c, ok := categoryAliases[v]; ok {
		return c, nil
	}
	return "", ErrInvalidCategory
}

// ParseKind resolves a canonical or legacy kind label.
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if strings.ToLower(string(k)) == v {
			return k, nil
		}
	}
	if k, ok := kindAliases[v]; ok {
		return k, nil
	}
	return "", ErrInvalidKind
}

func (c Category) Valid() bool {
	switch c {
	case Housing, Food, Transport, Leisure, Health, Other:
		return true
	}
	return false
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a plain calendar date or a date with a time component
// (older ledgers stored full timestamps).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM grouping key for the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Validate checks the record invariants. The returned error is always a
// *ValidationError.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if err := t.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if !t.Category.Valid() {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	if !t.Kind.Valid() {
		return &ValidationError{Field: "kind", Err: ErrInvalidKind}
	}
	return nil
}
