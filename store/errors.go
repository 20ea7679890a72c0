package store

import "errors"

var (
	// ErrConflict signals a CAS write whose expected version no longer
	// matches the persisted document. The caller must re-read and retry.
	ErrConflict = errors.New("version conflict")

	// ErrPersistence signals a failed temp-write or rename. The previously
	// persisted document is guaranteed intact.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound signals a referenced id that is absent from the document.
	ErrNotFound = errors.New("not found")

	// ErrInvalid signals a payload that fails validation inside a mutation,
	// e.g. a duplicate category name. Nothing is written.
	ErrInvalid = errors.New("invalid")
)
