package storage

import (
	"context"
	"io"
)

// ObjectStorage persists raw uploaded files. Keys are opaque to callers;
// the document metadata row owns the mapping from document to key.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
