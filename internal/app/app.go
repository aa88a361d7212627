// Package app wires configuration into the stores shared by the HTTP server
// and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"input-portal/internal/blob"
	"input-portal/internal/config"
	"input-portal/internal/credentials"
	"input-portal/internal/database"
	"input-portal/internal/dictionary"
	"input-portal/internal/handlers"
	"input-portal/internal/submissions"
	"input-portal/internal/telemetry"
)

type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	Blobs       blob.Store
	Credentials *credentials.Store
	Submissions *submissions.Store
	Dictionary  *dictionary.Dictionary
	Metrics     *telemetry.Metrics
}

// Open builds every store named by cfg. Close releases the database.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	db, err := database.Open(cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
		}
	}()

	var backend credentials.Backend
	switch cfg.Registry.Driver {
	case "sql":
		if backend, err = credentials.NewSQLBackend(db); err != nil {
			return nil, err
		}
	default:
		backend = credentials.NewCSVBackend(cfg.Registry.UsersFile)
	}
	creds := credentials.NewStore(backend,
		credentials.WithHasher(credentials.BcryptHasher{Cost: cfg.BcryptCost}),
		credentials.WithLogger(logger.Named("credentials")))

	blobs, err := blob.Open(ctx, blob.Config{
		Driver:    cfg.Blob.Driver,
		Root:      cfg.DataDir,
		Bucket:    cfg.Blob.S3Bucket,
		Region:    cfg.Blob.S3Region,
		Endpoint:  cfg.Blob.S3Endpoint,
		PathStyle: cfg.Blob.S3PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	if _, statErr := os.Stat(cfg.Metrics.File); errors.Is(statErr, fs.ErrNotExist) {
		logger.Warn("metrics dictionary file not found, using built-in defaults",
			zap.String("file", cfg.Metrics.File))
	}
	dict, err := dictionary.Load(cfg.Metrics.File, cfg.Metrics.Sheet)
	if err != nil {
		return nil, fmt.Errorf("load metrics dictionary: %w", err)
	}
	logger.Info("metrics dictionary loaded",
		zap.String("file", filepath.Base(cfg.Metrics.File)),
		zap.Int("metrics", dict.Len()))

	a := &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Blobs:       blobs,
		Credentials: creds,
		Submissions: submissions.NewStore(blobs, submissions.WithLogger(logger.Named("submissions"))),
		Dictionary:  dict,
		Metrics:     telemetry.New(),
	}

	// heal the registry before the first request
	created, err := creds.EnsureAdminBootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Warn("admin account created without a password; run the setup flow")
	}
	return a, nil
}

func (a *App) Deps() handlers.Deps {
	return handlers.Deps{
		Credentials: a.Credentials,
		Submissions: a.Submissions,
		Dictionary:  a.Dictionary,
		DB:          a.DB,
		Metrics:     a.Metrics,
		Logger:      a.Logger,
	}
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
