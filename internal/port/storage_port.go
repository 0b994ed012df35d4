package port

import (
	"context"
	"errors"
)

var (
	// ErrStorageUnavailable means the medium cannot be used at all.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrQuotaExceeded means a write did not fit into the medium's capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KeyValueStore is the capability the order cache needs from a local storage medium.
type KeyValueStore interface {
	// Get reports found=false for a missing key.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
