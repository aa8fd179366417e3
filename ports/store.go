package ports

import "context"

// Store is a small durable key-value store used for local client state.
// Implementations return core.ErrKeyNotFound for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
