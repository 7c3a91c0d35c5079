package domain

import (
	"errors"
	"fmt"

	"eventledger/internal/concurrency"
)

// Sentinel errors shared by repositories, services and handlers.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict means the caller's concurrency token (or expected version)
	// no longer matches the stored event. The caller should re-fetch and retry.
	ErrConflict = concurrency.ErrConflict

	// ErrStaleWrite is returned by a conditional save when the stored row changed
	// between load and save.
	ErrStaleWrite = errors.New("stale write")

	// ErrAuditIncomplete marks a command whose writes committed but whose
	// version entry could not be appended.
	ErrAuditIncomplete = errors.New("changes committed without a version entry")
)

// BulkCreateError reports the element at which a bulk create stopped.
// Elements before Index were committed.
type BulkCreateError struct {
	Index int
	Err   error
}

func (e *BulkCreateError) Error() string {
	return fmt.Sprintf("bulk create: element %d: %v", e.Index, e.Err)
}

func (e *BulkCreateError) Unwrap() error {
	return e.Err
}
