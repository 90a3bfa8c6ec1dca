package providers

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the injected read/write interface behind the profile store
// and the HTTP response cache.
type KeyValueStore interface {
	// Get retrieves a value; it returns ErrKeyNotFound for missing keys
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with expiration; zero means no expiry
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists
	Exists(ctx context.Context, key string) (bool, error)
}
