package storage

import (
	"context"
	"time"
)

// ObjectInfo represents metadata for a mirrored file/object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectStorage captures the minimal S3-compatible operations the import
// pipeline needs: mirror an upload, list the mirror, pull a file back down.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Download(ctx context.Context, key string) ([]byte, error)
}
