package ingest

import "errors"

var (
	// ErrParse means the CSV was structurally unreadable; nothing was persisted.
	ErrParse = errors.New("csv parse failed")

	// ErrEmptyOrUnrecognized means the parse succeeded but zero rows survived
	// normalization. A validation failure, not a crash.
	ErrEmptyOrUnrecognized = errors.New("no recognizable rows in file")

	// ErrStorage means a required write (records or file metadata) failed after
	// a successful parse. The import is aborted.
	ErrStorage = errors.New("storage write failed")
)
