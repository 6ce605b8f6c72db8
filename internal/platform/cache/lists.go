// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package cache implements the read-through list cache backing FERCEN's
dashboard collections.

# Architecture

Lists are cached whole, as the serialized JSON of the full collection, under
a fixed key per resource. A short TTL plus invalidate-after-write keeps the
window of staleness bounded while shielding PostgreSQL from the dashboard's
polling reads.

The cache NEVER fails a request: connectivity and protocol errors on read
degrade to a miss, and write failures are surfaced to the caller only so it
can log them. The database remains the source of truth at all times.
*/
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fercen/fercen/internal/platform/constants"
)

// Lists is the Redis-backed cache for whole-collection reads.
type Lists struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewLists creates a list cache over an existing Redis client.
func NewLists(client *redis.Client, logger *slog.Logger) *Lists {
	return &Lists{
		client: client,
		logger: logger,
		ttl:    constants.ListCacheTTL,
	}
}

/*
GetList fetches a cached collection together with its remaining lifetime.

Description: Issues GET and TTL in a single pipeline round trip. The
remaining TTL travels to the client as 'expireSeconds' so the frontend can
schedule its next refresh instead of polling blindly.

Any Redis failure is logged and reported as a miss; the caller falls back to
the database.

Parameters:
  - ctx: context.Context
  - key: Resource key (e.g. "electricity"), prefixed internally.

Returns:
  - json.RawMessage: The cached serialized collection, nil on miss.
  - int64: Remaining TTL in whole seconds, 0 on miss.
  - bool: Whether the lookup was a hit.
*/
func (lists *Lists) GetList(ctx context.Context, key string) (json.RawMessage, int64, bool) {
	fullKey := constants.RedisPrefixList + key

	pipeline := lists.client.Pipeline()
	getCommand := pipeline.Get(ctx, fullKey)
	ttlCommand := pipeline.TTL(ctx, fullKey)

	if _, err := pipeline.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, false
		}
		lists.logger.Warn("list_cache_read_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return nil, 0, false
	}

	value, err := getCommand.Bytes()
	if err != nil {
		return nil, 0, false
	}

	expireSeconds := int64(ttlCommand.Val().Seconds())
	if expireSeconds < 0 {
		expireSeconds = 0
	}

	return value, expireSeconds, true
}

/*
SetList stores a collection under the resource key with the fixed TTL.

Parameters:
  - ctx: context.Context
  - key: Resource key.
  - collection: Any JSON-serializable collection.

Returns:
  - error: Serialization or storage failures. Callers log and continue; a
    failed cache write never fails the request.
*/
func (lists *Lists) SetList(ctx context.Context, key string, collection any) error {
	encoded, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("cache: failed to encode list %q: %w", key, err)
	}

	fullKey := constants.RedisPrefixList + key
	if err := lists.client.Set(ctx, fullKey, encoded, lists.ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to store list %q: %w", key, err)
	}

	return nil
}

/*
Invalidate drops a cached collection after a write to its source of truth.

Deleting an absent key is a no-op, so invalidation is idempotent and safe to
call unconditionally after every mutation.

Parameters:
  - ctx: context.Context
  - key: Resource key.

Returns:
  - error: Deletion failures. The next TTL expiry bounds staleness even when
    invalidation itself fails.
*/
func (lists *Lists) Invalidate(ctx context.Context, key string) error {
	if err := lists.client.Del(ctx, constants.RedisPrefixList+key).Err(); err != nil {
		return fmt.Errorf("cache: failed to invalidate list %q: %w", key, err)
	}
	return nil
}
