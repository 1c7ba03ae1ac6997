// Package blob stores document files keyed by path.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no object exists at the requested key.
var ErrNotFound = errors.New("blob: not found")

// Storage is the interface for document file storage.
type Storage interface {
	// Put uploads data under the given key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get downloads the object at the given key.
	Get(ctx context.Context, key string) ([]byte, error)
}
