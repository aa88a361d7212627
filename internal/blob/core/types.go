// Package core defines the artifact storage abstraction shared by the blob
// drivers. Stores are append-only: a key is written once and never replaced.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // small flat key-value metadata
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is a thin S3-like create-only object store.
type Store interface {
	// Put stores a new blob at key. It MUST fail with ErrExists if the key
	// is already present and must never replace existing content.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get retrieves the blob contents. ErrNotFound if missing.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// List returns blobs whose key has the prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// Locator is implemented by stores that can tell where a key lives outside
// the process (a filesystem path, an s3:// URI).
type Locator interface {
	Locate(key string) string
}

var (
	ErrExists   = errors.New("blobstore: key already exists")
	ErrNotFound = errors.New("blobstore: key not found")
)
