// Package bolt stores the ledger in a bbolt bucket keyed by append position.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"financeiro/internal/core"

	bbolt "go.etcd.io/bbolt"
)

var transactionsBucketName = []byte("transactions")

type record struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
}

type Repository struct {
	db   *bbolt.DB
	path string
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	r, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	r.path = path
	return r, nil
}

// New wraps an already open database.
func New(db *bbolt.DB) (*Repository, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(transactionsBucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Repository{db: db, path: db.Path()}, nil
}

func (r *Repository) Location() string { return "bolt:" + r.path }

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []core.Transaction
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(transactionsBucketName)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("record %d: %w", btoi(k), err)
			}
			t, err := rec.transaction()
			if err != nil {
				return fmt.Errorf("record %d: %w", btoi(k), err)
			}
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, &core.StorageReadError{Source: r.Location(), Err: err}
	}
	return out, nil
}

// Save drops the bucket and writes every record again in one transaction.
func (r *Repository) Save(ctx context.Context, records []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(transactionsBucketName) != nil {
			if err := tx.DeleteBucket(transactionsBucketName); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(transactionsBucketName)
		if err != nil {
			return err
		}
		for i, t := range records {
			raw, err := json.Marshal(fromTransaction(t))
			if err != nil {
				return err
			}
			if err := b.Put(itob(uint64(i)), raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &core.StorageWriteError{Target: r.Location(), Err: err}
	}
	return nil
}

func fromTransaction(t core.Transaction) record {
	return record{
		Date:        t.Date.String(),
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Category:    string(t.Category),
		Kind:        string(t.Kind),
	}
}

func (rec record) transaction() (core.Transaction, error) {
	d, err := core.ParseDate(rec.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	c, err := core.ParseCategory(rec.Category)
	if err != nil {
		return core.Transaction{}, err
	}
	k, err := core.ParseKind(rec.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{Date: d, Description: rec.Description, Amount: core.Money{Cents: rec.AmountCents}, Category: c, Kind: k}
	return t, t.Validate()
}

// Big-endian keys keep ForEach in append order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
