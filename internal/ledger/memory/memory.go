// Package memory keeps the ledger in process memory. It backs tests and
// demo runs where nothing should touch the disk.
package memory

import (
	"context"
	"sync"

	"financeiro/internal/core"
)

type Repository struct {
	mu    sync.Mutex
	items []core.Transaction
	saves int
}

// New returns a repository that starts with the given records.
func New(seed ...core.Transaction) *Repository {
	return &Repository{items: append([]core.Transaction(nil), seed...)}
}

func (r *Repository) Location() string { return "memory" }

func (r *Repository) Load(_ context.Context) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Transaction(nil), r.items...), nil
}

func (r *Repository) Save(_ context.Context, records []core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]core.Transaction(nil), records...)
	r.saves++
	return nil
}

// Saves reports how many full rewrites happened.
func (r *Repository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
