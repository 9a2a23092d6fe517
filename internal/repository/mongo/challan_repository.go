package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/agrolytics/dealer-insights/internal/domain"
	"github.com/agrolytics/dealer-insights/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.Database = (*DB)(nil)

func (db *DB) StoreFileMetadata(ctx context.Context, meta *domain.FileMetadata) (string, error) {
	if meta.UploadedAt.IsZero() {
		meta.UploadedAt = time.Now()
	}
	meta.ID = primitive.NewObjectID().Hex()

	err := db.withOp(ctx, func(ctx context.Context) error {
		_, err := db.database.Collection(filesCollection).InsertOne(ctx, meta)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to store file metadata: %w", err)
	}
	return meta.ID, nil
}

func (db *DB) StoreRecords(ctx context.Context, records []domain.DeliveryRecord, fileID string) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(records))
	for i := range records {
		records[i].ID = primitive.NewObjectID().Hex()
		records[i].FileID = fileID
		docs = append(docs, records[i])
	}

	var inserted int
	err := db.withOp(ctx, func(ctx context.Context) error {
		res, err := db.database.Collection(challansCollection).InsertMany(ctx, docs)
		if err != nil {
			return err
		}
		inserted = len(res.InsertedIDs)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store records: %w", err)
	}
	return inserted, nil
}

func (db *DB) DeleteAllRecords(ctx context.Context) error {
	err := db.withOp(ctx, func(ctx context.Context) error {
		_, err := db.database.Collection(challansCollection).DeleteMany(ctx, bson.M{})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

func (db *DB) ListFiles(ctx context.Context) ([]domain.FileMetadata, error) {
	var files []domain.FileMetadata
	err := db.withOp(ctx, func(ctx context.Context) error {
		opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
		cursor, err := db.database.Collection(filesCollection).Find(ctx, bson.M{}, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &files)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if files == nil {
		files = []domain.FileMetadata{}
	}
	return files, nil
}

func (db *DB) GetRecords(ctx context.Context, fileID string) ([]domain.DeliveryRecord, error) {
	filter := bson.M{}
	if fileID != "" {
		filter["file_id"] = fileID
	}

	var records []domain.DeliveryRecord
	err := db.withOp(ctx, func(ctx context.Context) error {
		cursor, err := db.database.Collection(challansCollection).Find(ctx, filter)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &records)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	if records == nil {
		records = []domain.DeliveryRecord{}
	}
	return records, nil
}

func (db *DB) AppendUploadHistory(ctx context.Context, entry *domain.UploadHistoryEntry) error {
	if entry.UploadedAt.IsZero() {
		entry.UploadedAt = time.Now()
	}
	err := db.withOp(ctx, func(ctx context.Context) error {
		_, err := db.database.Collection(historyCollection).InsertOne(ctx, entry)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append upload history: %w", err)
	}
	return nil
}
