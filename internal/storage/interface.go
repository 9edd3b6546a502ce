// Package storage keeps uploaded catalog files until a worker imports them.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no file exists at a key
var ErrNotFound = errors.New("stored file not found")

// Metadata describes an uploaded catalog file
type Metadata struct {
	OriginalName string    `json:"originalName,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	SupplierID   string    `json:"supplierId,omitempty"`
	ImportID     string    `json:"importId,omitempty"`
	Checksum     string    `json:"checksum,omitempty"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Storage holds upload bodies by key.
// Implementations can be local filesystem, S3, GCS, etc.
type Storage interface {
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error
	Get(ctx context.Context, key string) ([]byte, error)
	Stat(ctx context.Context, key string) (*Metadata, error)
	Delete(ctx context.Context, key string) error
}

// StorageType represents the type of storage backend
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
)
