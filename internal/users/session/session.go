// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package session implements the server-side session lifecycle.

A successful login creates a session record in Redis and hands the browser a
signed cookie referencing it. Every subsequent request resolves the cookie
back into a [sec.Session] through the loader middleware; logout destroys the
record and expires the cookie.

# Architecture

  - Storage: Redis, key "session:<id>", TTL 7 days. The record is the JSON
    serialization of [sec.Session] minus the ID (the key carries it).
  - Cookie: HS256-signed token over the session ID (see [sec.CookieSigner]).
    The client never holds session data, only the signed pointer.
  - Failure stance: an unresolvable cookie demotes the request to anonymous;
    it never errors. Rejection is the capability check's job.
*/
package session

import (
	"context"

	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/users/account"
)

// # Contracts

// Store abstracts session record persistence.
type Store interface {
	Create(ctx context.Context, session *sec.Session) error

	// Get returns the stored session, with ID populated from the key. An
	// absent or expired record yields a NotFound error.
	Get(ctx context.Context, id string) (*sec.Session, error)

	Delete(ctx context.Context, id string) error
}

// UserDirectory is the slice of the account service the login flow needs.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*account.User, error)
}
