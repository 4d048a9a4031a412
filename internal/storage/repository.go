package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"financeiro/internal/core"
	"financeiro/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the ledger in a single transactions table, one row
// per record ordered by position.
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps the delete-and-insert rewrite serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logger = logger.WithComponent(log.ComponentStorage)
	logger.Debug("Ledger schema ready", log.FieldPath, dbPath, "schema_version", version)
	return &SQLiteRepository{db: db, path: dbPath, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Location() string { return "sqlite:" + r.path }

// Load implements ledger.Repository
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, description, amount_cents, category, kind FROM transactions ORDER BY position`)
	if err != nil {
		return nil, &core.StorageReadError{Source: r.Location(), Err: err}
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			date, desc, category, kind string
			cents                      int64
		)
		if err := rows.Scan(&date, &desc, &cents, &category, &kind); err != nil {
			return nil, &core.StorageReadError{Source: r.Location(), Err: fmt.Errorf("scan row: %w", err)}
		}
		t, err := rowToTransaction(date, desc, cents, category, kind)
		if err != nil {
			return nil, &core.StorageReadError{Source: r.Location(), Err: fmt.Errorf("row %d: %w", len(out)+1, err)}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageReadError{Source: r.Location(), Err: err}
	}
	return out, nil
}

// Save implements ledger.Repository. The whole table is rewritten in one
// database transaction.
func (r *SQLiteRepository) Save(ctx context.Context, records []core.Transaction) error {
	if err := r.save(ctx, records); err != nil {
		return &core.StorageWriteError{Target: r.Location(), Err: err}
	}
	r.logger.DebugContext(ctx, "Ledger saved to SQLite",
		log.FieldOperation, log.OpSave,
		log.FieldRecords, len(records),
	)
	return nil
}

func (r *SQLiteRepository) save(ctx context.Context, records []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (position, date, description, amount_cents, category, kind) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range records {
		if _, err := stmt.ExecContext(ctx, i, t.Date.String(), t.Description, t.Amount.Cents, string(t.Category), string(t.Kind)); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func rowToTransaction(date, desc string, cents int64, category, kind string) (core.Transaction, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	c, err := core.ParseCategory(category)
	if err != nil {
		return core.Transaction{}, err
	}
	k, err := core.ParseKind(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{Date: d, Description: desc, Amount: core.Money{Cents: cents}, Category: c, Kind: k}
	return t, t.Validate()
}
