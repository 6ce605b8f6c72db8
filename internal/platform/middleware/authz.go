// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

// Package middleware provides the HTTP middleware chain for the FERCEN API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, Session loading, Capability checks, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"net/http"

	"github.com/fercen/fercen/internal/platform/constants"
	"github.com/fercen/fercen/internal/platform/ctxutil"
	"github.com/fercen/fercen/internal/platform/respond"
	"github.com/fercen/fercen/internal/platform/sec"
)

// SessionResolver defines the interface needed to resolve session cookies.
//
// # Why an interface?
//
// Defining SessionResolver here decouples the middleware from the session
// service implementation, allowing us to easily inject fakes during unit
// testing.
type SessionResolver interface {
	ResolveCookie(ctx context.Context, cookieValue string) (*sec.Session, error)
}

// LoadSession resolves the session cookie into the acting [*sec.Session].
//
// # Flow
//  1. Check for the session cookie.
//  2. If absent, inject an anonymous session and proceed.
//  3. If present, verify the signed token and fetch the stored session.
//  4. On any failure the request proceeds as anonymous; capability checks
//     downstream decide whether that is acceptable.
//
// An invalid or expired cookie is never a hard error here: the same endpoint
// set serves both anonymous and authenticated callers, and [RequirePermission]
// is the single place that rejects.
func LoadSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			session := sec.NewAnonymousSession()

			if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
				if resolved, err := resolver.ResolveCookie(request.Context(), cookie.Value); err == nil && resolved != nil {
					session = resolved
				}
			}

			ctx := ctxutil.WithSession(request.Context(), session)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequirePermission blocks requests whose session lacks the given capability.
//
// # Usage
//
// Must be registered in the router AFTER [LoadSession]. The distinction
// between 401 (anonymous), 400 (corrupted session permissions) and 403
// (authenticated but lacking) is delegated to [sec.Can].
func RequirePermission(permission sec.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			session := ctxutil.GetSession(request.Context())

			if err := sec.Can(permission, session); err != nil {
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
