package bom

import (
	"context"
	"fmt"

	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/drive"
	"github.com/andresuchdata/kitchen-planner/internal/repository"
	"github.com/andresuchdata/kitchen-planner/internal/repository/postgres"
	"github.com/andresuchdata/kitchen-planner/internal/storage"
)

// NewSourceFromConfig builds the BOM source selected by BOM_SOURCE. The returned
// close func releases any connection the source opened.
func NewSourceFromConfig(ctx context.Context, cfg *config.Config) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.BOM.Source {
	case "", "static":
		return StaticSource{}, noop, nil

	case "file":
		if cfg.BOM.File == "" {
			return nil, nil, fmt.Errorf("BOM_FILE is required for the file source")
		}
		return FileSource{Path: cfg.BOM.File}, noop, nil

	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return RepositorySource{Repo: repository.NewBOMRepository(db)}, db.Close, nil

	case "s3":
		client, err := NewObjectStorage(cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		return ObjectSource{Storage: client, Key: cfg.BOM.ObjectKey}, noop, nil

	case "drive":
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, nil, err
		}
		return DriveSource{Drive: svc, FolderPath: cfg.BOM.DriveFolder, FileName: cfg.BOM.DriveFile}, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown BOM_SOURCE %q (want static, file, postgres, s3 or drive)", cfg.BOM.Source)
}

// NewObjectStorage builds the S3-compatible client from the storage section.
func NewObjectStorage(cfg config.StorageConfig) (storage.ObjectStorage, error) {
	return storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		UseSSL:    cfg.UseSSL,
	})
}
