// Package tokencache provides a Redis-backed token store so token
// reuse survives restarts and is shared across replicas.
package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tournevent/courier/pkg/courier"
)

const keyPrefix = "courier:token:"

// RedisStore implements courier.TokenStore on top of Redis. Entries
// expire with the token, so a hit is always a usable token.
type RedisStore struct {
	client *redis.Client
}

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// New creates a Redis-backed token store.
func New(cfg Config) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

type storedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *RedisStore) Get(ctx context.Context, key string) (*courier.Token, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token from redis: %w", err)
	}

	var st storedToken
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decoding cached token: %w", err)
	}

	tok := &courier.Token{
		AccessToken: st.AccessToken,
		TokenType:   st.TokenType,
		ExpiresAt:   st.ExpiresAt,
	}
	if !tok.Valid(time.Now()) {
		return nil, nil
	}
	return tok, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, tok *courier.Token) error {
	ttl := time.Until(tok.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(storedToken{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresAt:   tok.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("writing token to redis: %w", err)
	}
	return nil
}

var _ courier.TokenStore = (*RedisStore)(nil)
