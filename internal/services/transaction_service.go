// Package services provides the orchestration layer between the presentation
// surfaces and the ledger.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"financeiro/internal/amqp"
	"financeiro/internal/analytics"
	"financeiro/internal/cache"
	"financeiro/internal/core"
	"financeiro/internal/ledger"
	"financeiro/internal/log"
)

// Publisher announces recorded transactions. *amqp.Client implements it.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error
	Close() error
}

// TransactionService orchestrates ledger appends, dashboard snapshots and
// event publishing for the presentation layer.
type TransactionService struct {
	store     *ledger.Store
	publisher Publisher
	snapshots cache.Cache[analytics.Summary]
	logger    *log.Logger
	events    *log.EventLogger
}

// NewTransactionService wires the service. publisher and snapshots may be nil.
func NewTransactionService(store *ledger.Store, publisher Publisher, snapshots cache.Cache[analytics.Summary], logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentService)
	return &TransactionService{
		store:     store,
		publisher: publisher,
		snapshots: snapshots,
		logger:    logger,
		events:    log.NewEventLogger(logger),
	}
}

// Record appends t to the ledger. Validation and write failures come back as
// *core.ValidationError and *core.StorageWriteError; a publish failure is only
// logged because the record is already durable.
func (s *TransactionService) Record(ctx context.Context, t core.Transaction) ([]core.Transaction, error) {
	records, err := s.store.Append(ctx, t)
	if err != nil {
		return nil, err
	}
	if s.snapshots != nil {
		s.snapshots.Purge()
	}

	s.events.TransactionRecorded(ctx, t.Date.String(), t.Description, t.Amount.Cents,
		string(t.Category), string(t.Kind), len(records))

	if err := s.publish(ctx, t, len(records)-1); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction recorded message",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork,
			log.FieldOperation, log.OpPublish)
	}
	return records, nil
}

func (s *TransactionService) publish(ctx context.Context, t core.Transaction, position int) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishTransactionRecorded(ctx, amqp.NewTransactionRecordedMessage(t, position))
}

// Dashboard returns the analytics snapshot of the current ledger.
func (s *TransactionService) Dashboard(ctx context.Context) analytics.Summary {
	key := "summary:" + strconv.FormatUint(s.store.Version(), 10)
	if s.snapshots != nil {
		if sum, ok := s.snapshots.Get(key); ok {
			return sum
		}
	}
	sum := analytics.Summarize(s.store.Records())
	if s.snapshots != nil {
		s.snapshots.Set(key, sum)
	}
	s.logger.DebugContext(ctx, "Dashboard snapshot computed", log.FieldRecords, sum.Count)
	return sum
}

// Transactions returns a copy of the current ledger.
func (s *TransactionService) Transactions(_ context.Context) []core.Transaction {
	return s.store.Records()
}

// Location names where the ledger is persisted.
func (s *TransactionService) Location() string {
	return s.store.Location()
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Recorded int
	Skipped  []error
}

// RecordAll appends candidates one by one. Invalid candidates are skipped
// and reported; a write failure stops the import. onEach, when set, runs
// after every candidate.
func (s *TransactionService) RecordAll(ctx context.Context, candidates []core.Transaction, onEach func(i int)) (ImportResult, error) {
	var res ImportResult
	for i, t := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := s.Record(ctx, t)
		var verr *core.ValidationError
		switch {
		case err == nil:
			res.Recorded++
		case errors.As(err, &verr):
			res.Skipped = append(res.Skipped, fmt.Errorf("candidate %d: %w", i+1, err))
		default:
			return res, err
		}
		if onEach != nil {
			onEach(i)
		}
	}
	return res, nil
}

// Close releases the repository and AMQP resources.
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %w", errors.Join(errs...))
	}
	return nil
}
