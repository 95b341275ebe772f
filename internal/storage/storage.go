// Package storage selects the durable KeyValueStore backend.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"medlens/internal/config"
	"medlens/internal/port"
	"medlens/internal/storage/dynamodb"
	"medlens/internal/storage/file"
	"medlens/internal/storage/memory"
	"medlens/internal/storage/redis"
	"medlens/internal/storage/s3"
)

// Backend names accepted in config.StoreConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendS3       = "s3"
	BackendDynamoDB = "dynamodb"
)

// NewKeyValueStore builds the backend named by cfg.Backend. Shared backends
// (redis, s3, dynamodb) get cfg.KeyPrefix prepended to every key.
func NewKeyValueStore(ctx context.Context, cfg *config.StoreConfig, log zerolog.Logger) (port.KeyValueStore, error) {
	var (
		store  port.KeyValueStore
		err    error
		shared bool
	)
	switch cfg.Backend {
	case BackendMemory:
		store = memory.NewStore()
	case BackendFile, "":
		store, err = file.NewStore(cfg.FilePath)
	case BackendRedis:
		store, err = redis.NewStore(ctx, cfg.RedisURL)
		shared = true
	case BackendS3:
		store, err = s3.NewStore(ctx, cfg)
		shared = true
	case BackendDynamoDB:
		store, err = dynamodb.NewStore(ctx, cfg)
		shared = true
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}

	if shared && cfg.KeyPrefix != "" {
		store = WithPrefix(store, cfg.KeyPrefix+":")
	}

	log.Info().Str("backend", cfg.Backend).Str("codec", cfg.Codec).Msg("key-value store ready")
	return store, nil
}

type prefixed struct {
	next   port.KeyValueStore
	prefix string
}

// WithPrefix namespaces every key passed to next.
func WithPrefix(next port.KeyValueStore, prefix string) port.KeyValueStore {
	return &prefixed{next: next, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.next.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Ping(ctx context.Context) error {
	return p.next.Ping(ctx)
}
