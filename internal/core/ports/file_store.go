package ports

import (
	"context"
	"io"
)

// FileStore is a flat, name-addressed blob store. Names are sanitized by
// callers and must not contain path separators.
type FileStore interface {
	// Save writes data under name and returns once it is durable.
	Save(ctx context.Context, name string, data []byte) error
	// Open returns domain.ErrNotFound when name is absent.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Delete is idempotent.
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}
