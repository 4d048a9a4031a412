// Package ledger owns the ordered sequence of transaction records and the
// tabular row format shared by the file and spreadsheet repositories.
package ledger

import (
	"context"

	"financeiro/internal/core"
)

// Ports for persistence adapters. Every repository loads and saves the full
// record set; there are no partial updates.
type (
	Repository interface {
		// Load returns the persisted records in append order. Missing data is
		// an empty slice and a nil error.
		Load(ctx context.Context) ([]core.Transaction, error)
		// Save replaces the persisted state with records.
		Save(ctx context.Context, records []core.Transaction) error
	}

	// Locator is implemented by repositories that can name where they keep
	// the ledger (a path, a table, a sheet range). Used in error messages.
	Locator interface {
		Location() string
	}
)

// LocationOf returns the repository location, or a generic label.
func LocationOf(repo Repository) string {
	if l, ok := repo.(Locator); ok {
		return l.Location()
	}
	return "ledger"
}
