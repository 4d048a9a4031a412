package ledger

import (
	"context"
	"errors"
	"io"
	"sync"

	"financeiro/internal/core"
	"financeiro/internal/log"
)

// Store owns the current record sequence. Callers read and extend it only
// through Load, Append and Records.
type Store struct {
	mu      sync.RWMutex
	repo    Repository
	logger  *log.Logger
	records []core.Transaction
	version uint64
}

// NewStore creates an empty store backed by repo. Call Load to read the
// persisted records.
func NewStore(repo Repository, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

// Open creates a store and loads it. Unreadable data is logged and replaced
// by an empty ledger so the caller can keep working.
func Open(ctx context.Context, repo Repository, logger *log.Logger) *Store {
	s := NewStore(repo, logger)
	if _, err := s.Load(ctx); err != nil {
		s.logger.WarnContext(ctx, "Ledger unreadable, starting empty",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeStorageRead,
			log.FieldOperation, log.OpLoad,
		)
	}
	return s
}

// Load reads the persisted set and makes it the current sequence. On a
// *core.StorageReadError the store holds an empty sequence.
func (s *Store) Load(ctx context.Context) ([]core.Transaction, error) {
	records, err := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	if err != nil {
		s.records = nil
		var readErr *core.StorageReadError
		if errors.As(err, &readErr) {
			return nil, err
		}
		return nil, &core.StorageReadError{Source: LocationOf(s.repo), Err: err}
	}
	s.records = append([]core.Transaction(nil), records...)
	s.logger.DebugContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldRecords, len(s.records),
	)
	return s.snapshot(), nil
}

// Append validates t, persists the sequence with t at the end and returns
// it. A *core.ValidationError or *core.StorageWriteError leaves the current
// sequence unchanged.
func (s *Store) Append(ctx context.Context, t core.Transaction) ([]core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Transaction, len(s.records), len(s.records)+1)
	copy(next, s.records)
	next = append(next, t)

	if err := s.repo.Save(ctx, next); err != nil {
		var writeErr *core.StorageWriteError
		if errors.As(err, &writeErr) {
			return nil, err
		}
		return nil, &core.StorageWriteError{Target: LocationOf(s.repo), Err: err}
	}

	s.records = next
	s.version++
	return s.snapshot(), nil
}

// Records returns a copy of the current sequence.
func (s *Store) Records() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version changes every time the sequence is replaced.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Location names where the ledger is persisted.
func (s *Store) Location() string {
	return LocationOf(s.repo)
}

// Close releases the repository when it holds resources.
func (s *Store) Close() error {
	if c, ok := s.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) snapshot() []core.Transaction {
	out := make([]core.Transaction, len(s.records))
	copy(out, s.records)
	return out
}
