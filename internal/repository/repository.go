package repository

import (
	"context"

	"github.com/agrolytics/dealer-insights/internal/domain"
)

// Database is the persistence collaborator for canonical delivery records.
// It is constructed once and passed by reference; there is no package-level
// singleton client. Two implementations exist: mongo (real) and memory
// (in-process fake used by tests and as an explicit fallback).
type Database interface {
	// StoreFileMetadata persists metadata for an ingested file and returns its id.
	StoreFileMetadata(ctx context.Context, meta *domain.FileMetadata) (string, error)

	// StoreRecords persists a batch of canonical records tagged with fileID and
	// returns the inserted count.
	StoreRecords(ctx context.Context, records []domain.DeliveryRecord, fileID string) (int, error)

	// DeleteAllRecords removes every delivery record. Used by "replace" imports.
	DeleteAllRecords(ctx context.Context) error

	// ListFiles returns metadata for all ingested files, newest first.
	ListFiles(ctx context.Context) ([]domain.FileMetadata, error)

	// GetRecords returns all records, or only those of one file when fileID is
	// non-empty.
	GetRecords(ctx context.Context, fileID string) ([]domain.DeliveryRecord, error)

	// AppendUploadHistory writes an audit entry. This is the optional write:
	// callers treat failures as warnings, not import failures.
	AppendUploadHistory(ctx context.Context, entry *domain.UploadHistoryEntry) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
