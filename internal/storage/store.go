package storage

import (
	"context"
	"time"
)

// UploadInfo describes a stored object.
type UploadInfo struct {
	Key  string
	URL  string
	Size int64
}

// Entry is one object returned by a prefix listing.
type Entry struct {
	Key  string
	Size int64
}

// ObjectStore is the narrow storage contract consumed by the generation
// core: write, sign, delete, list and read back objects by key.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, key, contentType string, metadata map[string]string) (UploadInfo, error)
	SignedURL(key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Entry, error)
	Read(ctx context.Context, key string) ([]byte, error)
}
