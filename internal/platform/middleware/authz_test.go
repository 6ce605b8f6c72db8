// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fercen/fercen/internal/platform/constants"
	"github.com/fercen/fercen/internal/platform/ctxutil"
	"github.com/fercen/fercen/internal/platform/middleware"
	"github.com/fercen/fercen/internal/platform/sec"
)

// fakeResolver returns a fixed session (or error) for any cookie value.
type fakeResolver struct {
	session *sec.Session
	err     error

	// lastCookie records what the middleware handed over.
	lastCookie string
}

func (resolver *fakeResolver) ResolveCookie(_ context.Context, cookieValue string) (*sec.Session, error) {
	resolver.lastCookie = cookieValue
	return resolver.session, resolver.err
}

// captureSession is a terminal handler that records the session the
// middleware chain injected.
func captureSession(target **sec.Session) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*target = ctxutil.GetSession(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestLoadSession verifies cookie resolution and the degrade-to-anonymous
behavior on every failure mode.
*/
func TestLoadSession(t *testing.T) {
	userSession := &sec.Session{
		ID:          "stored-session",
		Type:        sec.SessionUser,
		UserID:      "user-id",
		Username:    "fercen",
		Permissions: []sec.Permission{sec.PermissionReadUser},
	}

	t.Run("valid_cookie_resolves_user_session", func(t *testing.T) {
		resolver := &fakeResolver{session: userSession}
		var got *sec.Session
		handler := middleware.LoadSession(resolver)(captureSession(&got))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "signed-token"})
		handler.ServeHTTP(httptest.NewRecorder(), request)

		require.NotNil(t, got)
		assert.Equal(t, "signed-token", resolver.lastCookie)
		assert.Equal(t, "fercen", got.Username)
		assert.False(t, got.IsAnonymous())
	})

	t.Run("absent_cookie_degrades_to_anonymous", func(t *testing.T) {
		resolver := &fakeResolver{session: userSession}
		var got *sec.Session
		handler := middleware.LoadSession(resolver)(captureSession(&got))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotNil(t, got)
		assert.True(t, got.IsAnonymous())
		assert.Empty(t, resolver.lastCookie, "resolver must not run without a cookie")
	})

	t.Run("resolver_failure_degrades_to_anonymous", func(t *testing.T) {
		resolver := &fakeResolver{err: errors.New("redis down")}
		var got *sec.Session
		handler := middleware.LoadSession(resolver)(captureSession(&got))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "whatever"})
		handler.ServeHTTP(httptest.NewRecorder(), request)

		require.NotNil(t, got)
		assert.True(t, got.IsAnonymous())
	})

	t.Run("empty_cookie_value_degrades_to_anonymous", func(t *testing.T) {
		resolver := &fakeResolver{session: userSession}
		var got *sec.Session
		handler := middleware.LoadSession(resolver)(captureSession(&got))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: ""})
		handler.ServeHTTP(httptest.NewRecorder(), request)

		require.NotNil(t, got)
		assert.True(t, got.IsAnonymous())
	})
}

/*
TestRequirePermission verifies the status code matrix produced by the guard.
*/
func TestRequirePermission(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	})

	serve := func(session *sec.Session, permission sec.Permission) *httptest.ResponseRecorder {
		handler := middleware.RequirePermission(permission)(next)
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		if session != nil {
			request = request.WithContext(ctxutil.WithSession(request.Context(), session))
		}

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("authorized_passes_through", func(t *testing.T) {
		session := &sec.Session{
			Type:        sec.SessionUser,
			Permissions: []sec.Permission{sec.PermissionReadInvite},
		}
		recorder := serve(session, sec.PermissionReadInvite)
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("no_session_in_context_is_401", func(t *testing.T) {
		recorder := serve(nil, sec.PermissionReadInvite)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("anonymous_lacking_is_401_with_envelope", func(t *testing.T) {
		recorder := serve(sec.NewAnonymousSession(), sec.PermissionReadInvite)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)

		var envelope map[string]any
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "MIDDLEWARES:CAN:VALIDATION:UNAUTHORIZED", envelope["errorLocationCode"])
		assert.NotEmpty(t, envelope["requestId"])
	})

	t.Run("anonymous_holding_passes", func(t *testing.T) {
		recorder := serve(sec.NewAnonymousSession(), sec.PermissionCreateSession)
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("user_lacking_is_403", func(t *testing.T) {
		session := &sec.Session{
			Type:        sec.SessionUser,
			Permissions: []sec.Permission{sec.PermissionReadUser},
		}
		recorder := serve(session, sec.PermissionCreateInvite)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("corrupted_permissions_is_400", func(t *testing.T) {
		session := &sec.Session{Type: sec.SessionUser}
		recorder := serve(session, sec.PermissionReadUser)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
