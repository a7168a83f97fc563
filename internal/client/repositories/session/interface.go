package session

import "context"

// Repository is a durable string key/value store.
//
// Get returns ok=false (and a nil error) when the key is absent. SetMany writes
// all pairs atomically.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	SetMany(ctx context.Context, pairs map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
