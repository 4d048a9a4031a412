package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"financeiro/internal/core"
)

// Header is the exact column set, in order, of a persisted ledger.
var Header = []string{"Data", "Descrição", "Valor", "Categoria", "Tipo"}

// HeaderMatches reports whether row is the ledger header. A UTF-8 byte order
// mark and surrounding spaces are ignored.
func HeaderMatches(row []string) bool {
	if len(row) != len(Header) {
		return false
	}
	for i, col := range row {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if col != Header[i] {
			return false
		}
	}
	return true
}

// EncodeRow renders a transaction as the five ledger columns.
func EncodeRow(t core.Transaction) []string {
	return []string{
		t.Date.String(),
		t.Description,
		t.Amount.Decimal().StringFixed(2),
		string(t.Category),
		string(t.Kind),
	}
}

// DecodeRow parses the five ledger columns into a validated transaction.
func DecodeRow(row []string) (core.Transaction, error) {
	if len(row) != len(Header) {
		return core.Transaction{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(row))
	}

	date, err := core.ParseDate(row[0])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("column %s: %w", Header[0], err)
	}

	raw := strings.ReplaceAll(strings.TrimSpace(row[2]), ",", ".")
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("column %s: %w", Header[2], core.ErrInvalidAmount)
	}

	category, err := core.ParseCategory(row[3])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("column %s: %w", Header[3], err)
	}
	kind, err := core.ParseKind(row[4])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("column %s: %w", Header[4], err)
	}

	t := core.Transaction{
		Date:        date,
		Description: row[1],
		Amount:      core.MoneyFromDecimal(value),
		Category:    category,
		Kind:        kind,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// DecodeRows parses a header row followed by data rows. An empty input is an
// empty ledger.
func DecodeRows(rows [][]string) ([]core.Transaction, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if !HeaderMatches(rows[0]) {
		return nil, fmt.Errorf("unexpected header %q", rows[0])
	}
	out := make([]core.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		t, err := DecodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// EncodeRows renders the header followed by one row per transaction.
func EncodeRows(records []core.Transaction) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, t := range records {
		rows = append(rows, EncodeRow(t))
	}
	return rows
}

func isBlank(row []string) bool {
	for _, col := range row {
		if strings.TrimSpace(col) != "" {
			return false
		}
	}
	return true
}
