// Package memory is an in-process Database implementation. It backs the unit
// tests and serves as an explicit fallback when no MongoDB is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agrolytics/dealer-insights/internal/domain"
	"github.com/agrolytics/dealer-insights/internal/repository"
)

type DB struct {
	mu      sync.RWMutex
	records []domain.DeliveryRecord
	files   []domain.FileMetadata
	history []domain.UploadHistoryEntry
	nextID  int
}

var _ repository.Database = (*DB)(nil)

func NewDB() *DB {
	return &DB{nextID: 1}
}

func (db *DB) StoreFileMetadata(ctx context.Context, meta *domain.FileMetadata) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if meta.UploadedAt.IsZero() {
		meta.UploadedAt = time.Now()
	}
	meta.ID = fmt.Sprintf("file-%d", db.nextID)
	db.nextID++
	db.files = append(db.files, *meta)
	return meta.ID, nil
}

func (db *DB) StoreRecords(ctx context.Context, records []domain.DeliveryRecord, fileID string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range records {
		records[i].ID = fmt.Sprintf("rec-%d", db.nextID)
		records[i].FileID = fileID
		db.nextID++
		db.records = append(db.records, records[i])
	}
	return len(records), nil
}

func (db *DB) DeleteAllRecords(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.records = nil
	return nil
}

func (db *DB) ListFiles(ctx context.Context) ([]domain.FileMetadata, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	files := make([]domain.FileMetadata, len(db.files))
	copy(files, db.files)
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	return files, nil
}

func (db *DB) GetRecords(ctx context.Context, fileID string) ([]domain.DeliveryRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	records := make([]domain.DeliveryRecord, 0, len(db.records))
	for _, rec := range db.records {
		if fileID != "" && rec.FileID != fileID {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (db *DB) AppendUploadHistory(ctx context.Context, entry *domain.UploadHistoryEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if entry.UploadedAt.IsZero() {
		entry.UploadedAt = time.Now()
	}
	db.history = append(db.history, *entry)
	return nil
}

// History exposes the audit log for tests.
func (db *DB) History() []domain.UploadHistoryEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]domain.UploadHistoryEntry, len(db.history))
	copy(out, db.history)
	return out
}

func (db *DB) Ping(ctx context.Context) error { return nil }

func (db *DB) Close(ctx context.Context) error { return nil }
