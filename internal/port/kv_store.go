package port

import "context"

// KeyValueStore is durable string-keyed storage, the server-side stand-in
// for a browser's local storage. Get returns domain.ErrNotFound for a
// missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
