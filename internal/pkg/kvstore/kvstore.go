// internal/pkg/kvstore/kvstore.go
package kvstore

import (
	"context"
	"fmt"
	"time"
)

// ErrNotFound is returned when a key does not exist in the store
var ErrNotFound = fmt.Errorf("kvstore: key not found")

// Store is a namespaced key-value store. Call sites depend on this interface
// so in-memory, Redis, or file-backed implementations can be substituted
// without touching them.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key builds a namespaced key to avoid collisions between features sharing
// one backend
func Key(namespace string, parts ...string) string {
	key := namespace
	for _, part := range parts {
		key += ":" + part
	}
	return key
}
