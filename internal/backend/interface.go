package backend

import (
	"context"

	"financeiro/internal/config"
	"financeiro/internal/ledger"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the repository instance and optional cleanup function
type BackendResult struct {
	Repository ledger.Repository
	Cleanup    CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates ledger repositories based on configuration
type Factory interface {
	// CreateBackend creates a repository instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// CSV specific
	LedgerFile string

	// SQLite specific
	SQLiteDBPath string

	// Bolt specific
	BoltDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend    BackendType = config.BackendCSV
	MemoryBackend BackendType = config.BackendMemory
	SQLiteBackend BackendType = config.BackendSQLite
	BoltBackend   BackendType = config.BackendBolt
	SheetsBackend BackendType = config.BackendSheets
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, MemoryBackend, SQLiteBackend, BoltBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
