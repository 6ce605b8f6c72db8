// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Sessions & Cache: Cookie configuration, Redis key taxonomy, TTLs.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "fercen-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Sessions

const (
	// SessionCookieName is the name of the cookie carrying the signed session token.
	SessionCookieName = "fercen_session"

	// SessionTTL is how long a server-side session record lives without renewal.
	SessionTTL = 7 * 24 * time.Hour

	// SessionIssuer is the 'iss' claim stamped on session cookie tokens.
	SessionIssuer = "fercen.app"
)

// # Retry Policy
//
// Applies only to password hashing and outbound mail (everything else
// fails fast).

const (
	// RetryMaxAttempts is the total attempt budget for retried operations.
	RetryMaxAttempts = 3

	// RetryInterval is the fixed delay between retry attempts.
	RetryInterval = 150 * time.Millisecond
)

// # Secret Code Lengths

const (
	// InviteCodeLength is the public ID length of an invitation.
	InviteCodeLength = 7

	// RecoveryCodeLength is the public ID length of a password recovery code.
	RecoveryCodeLength = 8

	// RecoveryCodeValidity is how long a recovery code can be redeemed.
	RecoveryCodeValidity = 15 * time.Minute
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession = "session:"
	RedisPrefixList    = "list:"
)

// # List Cache

const (
	// ListCacheTTL is the fixed expiry for cached list resources.
	ListCacheTTL = 180 * time.Second

	// ListKeyElectricity is the cache key for the electricity bill collection.
	ListKeyElectricity = "electricity"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)
