// Package blob selects the artifact store used for submissions and raw
// uploads. Drivers live in subpackages; this package re-exports the shared
// types so callers import a single path.
package blob

import (
	"context"
	"fmt"

	"input-portal/internal/blob/core"
	"input-portal/internal/blob/fs"
	"input-portal/internal/blob/memory"
	"input-portal/internal/blob/s3"
)

type (
	Store      = core.Store
	Info       = core.Info
	PutOptions = core.PutOptions
	Driver     = core.Driver
	Locator    = core.Locator
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrExists   = core.ErrExists
	ErrNotFound = core.ErrNotFound
)

// Config selects and parameterises a driver.
type Config struct {
	Driver    string
	Root      string // fs only
	Bucket    string // s3 only
	Region    string
	Endpoint  string
	PathStyle bool
}

// Open returns the Store named by cfg.Driver (default fs).
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return fs.New(cfg.Root)
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// Locate returns a human-usable location for key, falling back to the key.
func Locate(s Store, key string) string {
	if l, ok := s.(Locator); ok {
		if loc := l.Locate(key); loc != "" {
			return loc
		}
	}
	return key
}
