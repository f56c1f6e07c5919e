package repositories

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by Load when nothing was saved under the key yet
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore persists opaque serialized snapshots under string keys.
// Writes replace the whole blob; there is no partial update.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
}
