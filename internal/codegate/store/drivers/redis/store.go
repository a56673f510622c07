// Package redis keeps access codes in Redis hashes. The compare-and-set runs
// as a Lua script so the status check and every claim field land atomically,
// and the claim sets the key's expiry to the purge time so no sweep is needed.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "codegate:code:"

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type Store struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewStore connects to Redis and checks the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	s := NewStoreWithClient(rdb, cfg.KeyPrefix)
	if err := s.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithClient wraps an existing client, e.g. a cluster client.
func NewStoreWithClient(rdb goredis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// ApplyMigrations is a no-op; Redis has no schema.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Store) AccessCodes() store.AccessCodes {
	return &accessCodesRepo{rdb: s.rdb, prefix: s.prefix}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
}
