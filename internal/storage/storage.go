package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ortrace/ortrace-go/internal/config"
)

// ErrNotFound is returned by Get when the object does not exist.
var ErrNotFound = errors.New("object not found")

// Backend is the artifact store contract. Implementations are
// interchangeable; callers never branch on the backend type. Put creates
// any needed intermediate structure and readers never observe an object
// shorter than what a completed Put wrote.
type Backend interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// New selects the configured backend once at process start. The returned
// value is injected everywhere a store is needed.
func New() (Backend, error) {
	switch config.StorageType {
	case "minio":
		return NewMinioBackend()
	case "local", "":
		return NewLocalBackend(config.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage type %q", config.StorageType)
	}
}
