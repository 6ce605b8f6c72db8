// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fercen/fercen/internal/platform/apperr"
	"github.com/fercen/fercen/internal/platform/constants"
	"github.com/fercen/fercen/internal/platform/sec"
)

// # Redis Session Store

// RedisStore implements [Store] over a Redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed [Store].
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Create stores the session record under "session:<id>" with the platform TTL.

Parameters:
  - ctx: context.Context
  - session: The session to persist; ID must be set.

Returns:
  - error: Serialization or storage failures.
*/
func (store *RedisStore) Create(ctx context.Context, session *sec.Session) error {
	encoded, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: failed to encode record: %w", err)
	}

	key := constants.RedisPrefixSession + session.ID
	if err := store.client.Set(ctx, key, encoded, constants.SessionTTL).Err(); err != nil {
		return fmt.Errorf("session: failed to store record: %w", err)
	}

	return nil
}

/*
Get fetches and decodes a session record.

Description: The stored JSON does not carry the ID (it lives in the key), so
it is re-attached before returning.

Returns:
  - *sec.Session: The stored session.
  - error: apperr.NotFound when absent or expired; connectivity errors otherwise.
*/
func (store *RedisStore) Get(ctx context.Context, id string) (*sec.Session, error) {
	key := constants.RedisPrefixSession + id

	encoded, err := store.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound(apperr.Opts{
				ErrorLocationCode: "STORE:SESSIONS:GET:NOT_FOUND",
			})
		}
		return nil, fmt.Errorf("session: failed to fetch record: %w", err)
	}

	session := &sec.Session{}
	if err := json.Unmarshal(encoded, session); err != nil {
		return nil, fmt.Errorf("session: failed to decode record: %w", err)
	}

	session.ID = id
	return session, nil
}

// Delete destroys a session record. Deleting an absent record is a no-op.
func (store *RedisStore) Delete(ctx context.Context, id string) error {
	if err := store.client.Del(ctx, constants.RedisPrefixSession+id).Err(); err != nil {
		return fmt.Errorf("session: failed to delete record: %w", err)
	}
	return nil
}
