package backend

import (
	"context"
	"fmt"

	"financeiro/internal/ledger/csvfile"
	"financeiro/internal/ledger/memory"
	"financeiro/internal/log"
	gsheet "financeiro/internal/sheets/google"
	"financeiro/internal/storage"
	"financeiro/internal/storage/bolt"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVBackend:
		return f.createCSVBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case BoltBackend:
		return f.createBoltBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createCSVBackend(config Config) (*BackendResult, error) {
	repo := csvfile.New(config.LedgerFile)
	f.logger.Info("Initialized CSV backend", "path", repo.Location())
	return &BackendResult{Repository: repo}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend")
	return &BackendResult{Repository: memory.New()}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Repository: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createBoltBackend(config Config) (*BackendResult, error) {
	repo, err := bolt.Open(config.BoltDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bolt repository: %w", err)
	}
	f.logger.Info("Initialized bolt backend", "db_path", config.BoltDBPath)
	return &BackendResult{Repository: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.NewFromConfig(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "location", cli.Location())
	return &BackendResult{Repository: cli}, nil
}
