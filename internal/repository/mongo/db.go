package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/agrolytics/dealer-insights/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/semaphore"
)

const (
	challansCollection = "challans"
	filesCollection    = "files"
	historyCollection  = "upload_history"
)

// DB wraps the mongo client with a semaphore that bounds concurrent
// operations, mirroring the connection-pool limits we want on small
// deployments.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
	sem      *semaphore.Weighted
	timeout  time.Duration
}

// NewDB connects to MongoDB and verifies the connection with a ping.
func NewDB(cfg *config.MongoConfig) (*DB, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &DB{
		client:   client,
		database: client.Database(cfg.Database),
		sem:      semaphore.NewWeighted(10),
		timeout:  timeout,
	}, nil
}

// withOp acquires a semaphore slot and runs fn with a deadline applied.
func (db *DB) withOp(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	opCtx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	return fn(opCtx)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.withOp(ctx, func(ctx context.Context) error {
		return db.client.Ping(ctx, readpref.Primary())
	})
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
