package storage

import "context"

// Port abstracts blob storage. Paths are opaque to callers; only this
// package knows how they map onto the backing store.
type Port interface {
	Store(ctx context.Context, name string, data []byte, size int64, contentType string) (string, error)
	Retrieve(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
