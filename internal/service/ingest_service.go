package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agrolytics/dealer-insights/internal/cache"
	"github.com/agrolytics/dealer-insights/internal/domain"
	"github.com/agrolytics/dealer-insights/internal/ingest"
	"github.com/agrolytics/dealer-insights/internal/repository"
	"github.com/agrolytics/dealer-insights/internal/storage"
	"github.com/rs/zerolog/log"
)

// Import modes. Replace wipes all prior records before inserting; append just
// inserts. Overlapping challan numbers across repeated imports are allowed to
// accumulate — there is no dedup.
const (
	ModeReplace = "replace"
	ModeAppend  = "append"
)

// IngestResult reports one import. Warning carries non-fatal failures of
// optional writes (blob mirror, upload history); the import itself succeeded.
type IngestResult struct {
	FileID        string `json:"file_id"`
	Filename      string `json:"filename"`
	Mode          string `json:"mode"`
	InsertedCount int    `json:"inserted_count"`
	SkippedRows   int    `json:"skipped_rows"`
	Warning       string `json:"warning,omitempty"`
}

// IngestService runs the CSV ingestion pipeline: decode, parse, normalize,
// persist. Parsing always completes before any persistence starts.
type IngestService struct {
	repo       repository.Database
	blob       storage.ObjectStorage // nil when mirroring is disabled
	cache      cache.AnalyticsCache
	normalizer *ingest.Normalizer
}

func NewIngestService(repo repository.Database, blob storage.ObjectStorage, c cache.AnalyticsCache) *IngestService {
	if c == nil {
		c = cache.NewNoopAnalyticsCache()
	}
	return &IngestService{
		repo:       repo,
		blob:       blob,
		cache:      c,
		normalizer: ingest.NewNormalizer(),
	}
}

// Ingest processes one CSV file. Returns ingest.ErrParse /
// ingest.ErrEmptyOrUnrecognized / ingest.ErrStorage per the failure taxonomy.
func (s *IngestService) Ingest(ctx context.Context, filename string, data []byte, mode string) (*IngestResult, error) {
	return s.ingest(ctx, filename, data, mode, true)
}

func (s *IngestService) ingest(ctx context.Context, filename string, data []byte, mode string, mirror bool) (*IngestResult, error) {
	mode = normalizeMode(mode)

	rows, err := ingest.ReadRows(data)
	if err != nil {
		return nil, err
	}

	records := make([]domain.DeliveryRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec := s.normalizer.Normalize(row)
		if rec == nil {
			skipped++
			continue
		}
		records = append(records, *rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ingest.ErrEmptyOrUnrecognized, filename)
	}

	log.Info().
		Str("filename", filename).
		Str("mode", mode).
		Int("rows", len(records)).
		Int("skipped", skipped).
		Msg("parsed upload")

	if mode == ModeReplace {
		if err := s.repo.DeleteAllRecords(ctx); err != nil {
			return nil, fmt.Errorf("%w: clearing records: %v", ingest.ErrStorage, err)
		}
	}

	meta := &domain.FileMetadata{
		Filename:    filename,
		Size:        int64(len(data)),
		RowCount:    len(records),
		SkippedRows: skipped,
		Mode:        mode,
		UploadedAt:  time.Now(),
	}

	var warnings []string

	// Blob mirror is an optional side write; a failure downgrades to a warning.
	// Imports that came from the mirror skip it.
	if mirror && s.blob != nil {
		key := fmt.Sprintf("uploads/%s/%s", meta.UploadedAt.Format("20060102"), filename)
		if err := s.blob.Upload(ctx, key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("blob mirror failed")
			warnings = append(warnings, fmt.Sprintf("blob mirror failed: %v", err))
		} else {
			meta.BlobKey = key
		}
	}

	fileID, err := s.repo.StoreFileMetadata(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("%w: file metadata: %v", ingest.ErrStorage, err)
	}

	inserted, err := s.repo.StoreRecords(ctx, records, fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: records: %v", ingest.ErrStorage, err)
	}

	// Upload history is the other optional write.
	history := &domain.UploadHistoryEntry{
		Filename:      filename,
		FileID:        fileID,
		Mode:          mode,
		InsertedCount: inserted,
		SkippedRows:   skipped,
		UploadedAt:    meta.UploadedAt,
	}
	if err := s.repo.AppendUploadHistory(ctx, history); err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("upload history write failed")
		warnings = append(warnings, fmt.Sprintf("upload history write failed: %v", err))
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}

	result := &IngestResult{
		FileID:        fileID,
		Filename:      filename,
		Mode:          mode,
		InsertedCount: inserted,
		SkippedRows:   skipped,
		Warning:       strings.Join(warnings, "; "),
	}

	log.Info().
		Str("file_id", fileID).
		Int("inserted", inserted).
		Msg("import complete")

	return result, nil
}

// IngestFromBlob downloads a mirrored object and runs it through Ingest.
func (s *IngestService) IngestFromBlob(ctx context.Context, key, mode string) (*IngestResult, error) {
	if s.blob == nil {
		return nil, fmt.Errorf("blob storage is not configured")
	}

	data, err := s.blob.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading %s: %v", ingest.ErrStorage, key, err)
	}

	name := key
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		name = key[idx+1:]
	}
	return s.ingest(ctx, name, data, mode, false)
}

// ListFiles returns the ingested file history.
func (s *IngestService) ListFiles(ctx context.Context) ([]domain.FileMetadata, error) {
	return s.repo.ListFiles(ctx)
}

// ListBlobObjects lists the blob mirror under the uploads prefix.
func (s *IngestService) ListBlobObjects(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.blob == nil {
		return []storage.ObjectInfo{}, nil
	}
	return s.blob.List(ctx, "uploads/")
}

func normalizeMode(mode string) string {
	if strings.EqualFold(mode, ModeReplace) {
		return ModeReplace
	}
	return ModeAppend
}
