package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agrolytics/dealer-insights/internal/cache"
	"github.com/agrolytics/dealer-insights/internal/config"
	"github.com/agrolytics/dealer-insights/internal/repository"
	"github.com/agrolytics/dealer-insights/internal/repository/memory"
	mongorepo "github.com/agrolytics/dealer-insights/internal/repository/mongo"
	"github.com/agrolytics/dealer-insights/internal/service"
	"github.com/agrolytics/dealer-insights/internal/storage"
	_ "github.com/agrolytics/dealer-insights/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func newModeFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "mode",
		Usage: "Import mode: replace or append",
		Value: service.ModeAppend,
	}
}

func newIngestService(c *cli.Context) (*service.IngestService, func(), error) {
	cfg := config.Load()

	var repo repository.Database
	cleanup := func() {}

	if c.Bool("in-memory") {
		repo = memory.NewDB()
	} else {
		db, err := mongorepo.NewDB(&cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		repo = db
		cleanup = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Close(ctx)
		}
	}

	var blob storage.ObjectStorage
	if cfg.Blob.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := storage.NewMinioClient(ctx, &cfg.Blob)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("blob storage unavailable, mirroring disabled")
		} else {
			blob = client
		}
	}

	return service.NewIngestService(repo, blob, cache.NewNoopAnalyticsCache()), cleanup, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "ingest",
		Usage: "Import delivery challan CSV files into the dealer insights store",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "Use the in-memory store (dry runs)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "file",
				Usage:     "Ingest a local CSV file",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{newModeFlag()},
				Action:    runFile,
			},
			{
				Name:      "blob",
				Usage:     "Ingest a CSV file from the blob mirror by key",
				ArgsUsage: "<key>",
				Flags:     []cli.Flag{newModeFlag()},
				Action:    runBlob,
			},
			{
				Name:  "blob-all",
				Usage: "Re-ingest every object in the blob mirror",
				Flags: []cli.Flag{
					newModeFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent import workers",
						Value: 4,
					},
				},
				Action: runBlobAll,
			},
			{
				Name:   "files",
				Usage:  "List ingested file metadata",
				Action: runListFiles,
			},
			{
				Name:   "objects",
				Usage:  "List objects in the blob mirror",
				Action: runListObjects,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("ingest failed")
	}
}

func runFile(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("a CSV file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	svc, cleanup, err := newIngestService(c)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.Ingest(c.Context, filepath.Base(path), data, c.String("mode"))
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func runBlob(c *cli.Context) error {
	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("a blob key is required")
	}

	svc, cleanup, err := newIngestService(c)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.IngestFromBlob(c.Context, key, c.String("mode"))
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func runBlobAll(c *cli.Context) error {
	svc, cleanup, err := newIngestService(c)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.IngestAllFromBlob(c.Context, c.String("mode"), c.Int("workers"))
	if err != nil {
		return err
	}

	for i := range result.Imported {
		printResult(&result.Imported[i])
	}
	for _, f := range result.Failed {
		log.Error().Str("key", f.Key).Str("error", f.Error).Msg("object import failed")
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d objects failed to import",
			len(result.Failed), len(result.Imported)+len(result.Failed))
	}
	return nil
}

func runListFiles(c *cli.Context) error {
	svc, cleanup, err := newIngestService(c)
	if err != nil {
		return err
	}
	defer cleanup()

	files, err := svc.ListFiles(c.Context)
	if err != nil {
		return err
	}

	for _, f := range files {
		fmt.Printf("%s\t%s\t%d rows (%d skipped)\t%s\n",
			f.ID, f.Filename, f.RowCount, f.SkippedRows, f.UploadedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runListObjects(c *cli.Context) error {
	svc, cleanup, err := newIngestService(c)
	if err != nil {
		return err
	}
	defer cleanup()

	objects, err := svc.ListBlobObjects(c.Context)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		fmt.Printf("%s\t%d bytes\t%s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04"))
	}
	return nil
}

func printResult(result *service.IngestResult) {
	log.Info().
		Str("file_id", result.FileID).
		Str("mode", result.Mode).
		Int("inserted", result.InsertedCount).
		Int("skipped", result.SkippedRows).
		Msg("import complete")
	if result.Warning != "" {
		log.Warn().Str("warning", result.Warning).Msg("import finished with warnings")
	}
}
