// Copyright (c) 2026 Backalley. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/backalley/backalley/internal/platform/apperr"
	"github.com/backalley/backalley/internal/platform/constants"
)

// # Redis Session Store

// RedisSessionStore implements [SessionStore] on a Redis keyspace.
//
// Keys are written without a Redis TTL. Expiry is the policy's job: the store
// stays blind, and an expired payload is still readable until the policy
// invalidates it. This mirrors the PostgreSQL backend exactly, so the two are
// interchangeable via SESSION_BACKEND.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Write upserts the payload under the prefixed token key.
func (store *RedisSessionStore) Write(ctx context.Context, token string, payload []byte) error {
	key := constants.RedisPrefixSession + token

	if err := store.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("session store: failed to write session: %w", err)
	}

	return nil
}

// Read returns the payload stored under token, or NOT_FOUND.
func (store *RedisSessionStore) Read(ctx context.Context, token string) ([]byte, error) {
	key := constants.RedisPrefixSession + token

	payload, err := store.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("session store: failed to read session: %w", err)
	}

	return payload, nil
}

// Invalidate deletes the token's key. Deleting an absent key is a no-op.
func (store *RedisSessionStore) Invalidate(ctx context.Context, token string) error {
	key := constants.RedisPrefixSession + token

	if err := store.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("session store: failed to invalidate session: %w", err)
	}

	return nil
}
