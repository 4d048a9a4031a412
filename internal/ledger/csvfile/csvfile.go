// Package csvfile persists the ledger as a comma-separated file with the
// Data,Descrição,Valor,Categoria,Tipo header.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"financeiro/internal/core"
	"financeiro/internal/ledger"
)

// DefaultPath is the ledger file used when none is configured.
const DefaultPath = "dados_financeiros.csv"

type Repository struct {
	path string
}

func New(path string) *Repository {
	if path == "" {
		path = DefaultPath
	}
	return &Repository{path: path}
}

func (r *Repository) Location() string { return r.path }

// Load reads the whole file. A missing or empty file is an empty ledger.
func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.StorageReadError{Source: r.path, Err: err}
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &core.StorageReadError{Source: r.path, Err: err}
	}
	records, err := ledger.DecodeRows(rows)
	if err != nil {
		return nil, &core.StorageReadError{Source: r.path, Err: err}
	}
	return records, nil
}

// Save rewrites the file atomically: the rows go to a temporary file in the
// same directory, which then replaces the ledger.
func (r *Repository) Save(ctx context.Context, records []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.write(records); err != nil {
		return &core.StorageWriteError{Target: r.path, Err: err}
	}
	return nil
}

func (r *Repository) write(records []core.Transaction) (err error) {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(ledger.EncodeRows(records)); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
