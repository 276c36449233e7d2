package repository

import "context"

// KVStore persists serialized carts. Values under a key are replaced whole; there is no
// versioning, so a key must have a single writer.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}
