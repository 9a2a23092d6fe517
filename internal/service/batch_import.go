package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/agrolytics/dealer-insights/internal/ingest"
	"github.com/rs/zerolog/log"
)

const defaultImportWorkers = 4

// BatchImportResult reports a whole-prefix import: one entry per object that
// ingested cleanly, and one failure line per object that did not.
type BatchImportResult struct {
	Imported []IngestResult `json:"imported"`
	Failed   []ImportError  `json:"failed,omitempty"`
}

type ImportError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// IngestAllFromBlob imports every object under the uploads prefix using a
// small worker pool. Replace mode clears existing records once, up front;
// the per-object ingests then all run in append mode so concurrent workers
// never wipe each other's inserts.
func (s *IngestService) IngestAllFromBlob(ctx context.Context, mode string, workers int) (*BatchImportResult, error) {
	if s.blob == nil {
		return nil, fmt.Errorf("blob storage is not configured")
	}
	if workers < 1 {
		workers = defaultImportWorkers
	}

	objects, err := s.blob.List(ctx, "uploads/")
	if err != nil {
		return nil, fmt.Errorf("%w: listing objects: %v", ingest.ErrStorage, err)
	}
	if len(objects) == 0 {
		return &BatchImportResult{Imported: []IngestResult{}}, nil
	}

	if normalizeMode(mode) == ModeReplace {
		if err := s.repo.DeleteAllRecords(ctx); err != nil {
			return nil, fmt.Errorf("%w: clearing records: %v", ingest.ErrStorage, err)
		}
	}

	log.Info().
		Int("objects", len(objects)).
		Int("workers", workers).
		Msg("starting batch import")

	jobChan := make(chan string, len(objects))
	for _, obj := range objects {
		jobChan <- obj.Key
	}
	close(jobChan)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result BatchImportResult
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobChan {
				if ctx.Err() != nil {
					return
				}
				res, err := s.IngestFromBlob(ctx, key, ModeAppend)
				mu.Lock()
				if err != nil {
					log.Warn().Err(err).Str("key", key).Msg("batch import object failed")
					result.Failed = append(result.Failed, ImportError{Key: key, Error: err.Error()})
				} else {
					result.Imported = append(result.Imported, *res)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info().
		Int("imported", len(result.Imported)).
		Int("failed", len(result.Failed)).
		Msg("batch import complete")

	if result.Imported == nil {
		result.Imported = []IngestResult{}
	}
	return &result, nil
}
