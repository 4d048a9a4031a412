package core

import "fmt"

// ValidationError reports a candidate record that violates an invariant.
// Such records are rejected before append and never persisted.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageReadError reports persisted data that is unreadable or malformed.
type StorageReadError struct {
	Source string
	Err    error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read ledger %s: %v", e.Source, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError reports a ledger that could not be durably saved.
type StorageWriteError struct {
	Target string
	Err    error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write ledger %s: %v", e.Target, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}
