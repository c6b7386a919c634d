// Package storage provides the local key-value stores backing persisted client state.
package storage

import "context"

// KV is a string key-value store.
// Get reports ok=false when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}
