// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package session_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fercen/fercen/internal/platform/apperr"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/users/account"
	"github.com/fercen/fercen/internal/users/session"
)

// fakeStore keeps session records in memory.
type fakeStore struct {
	sessions map[string]*sec.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]*sec.Session)}
}

func (store *fakeStore) Create(_ context.Context, created *sec.Session) error {
	clone := *created
	store.sessions[created.ID] = &clone
	return nil
}

func (store *fakeStore) Get(_ context.Context, id string) (*sec.Session, error) {
	stored, found := store.sessions[id]
	if !found {
		return nil, apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:SESSIONS:GET:NOT_FOUND"})
	}
	clone := *stored
	clone.ID = id
	return &clone, nil
}

func (store *fakeStore) Delete(_ context.Context, id string) error {
	delete(store.sessions, id)
	return nil
}

// fakeDirectory serves a single known user.
type fakeDirectory struct {
	user *account.User
}

func (directory *fakeDirectory) GetByUsername(_ context.Context, username string) (*account.User, error) {
	if directory.user != nil && directory.user.Username == username {
		clone := *directory.user
		return &clone, nil
	}
	return nil, apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:USERS:GET_BY_USERNAME"})
}

var (
	knownHashOnce sync.Once
	knownHash     string
)

const knownPassword = "SenhaSegura1"

func knownUser(t *testing.T) *account.User {
	t.Helper()
	knownHashOnce.Do(func() {
		hash, err := sec.HashPassword(knownPassword)
		if err != nil {
			t.Fatalf("hashing fixture password: %v", err)
		}
		knownHash = hash
	})

	return &account.User{
		ID:           "user-id",
		Username:     "fercen",
		Email:        "fercen@fercen.app",
		Permissions:  []sec.Permission{sec.PermissionReadUser, sec.PermissionReadSession},
		PasswordHash: knownHash,
	}
}

type fixture struct {
	service *session.Service
	store   *fakeStore
	signer  *sec.CookieSigner
}

func newFixture(t *testing.T, user *account.User) *fixture {
	t.Helper()

	signer, err := sec.NewCookieSigner("0123456789abcdef0123456789abcdef", "fercen")
	require.NoError(t, err)

	store := newFakeStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service: session.NewService(store, &fakeDirectory{user: user}, signer, logger),
		store:   store,
		signer:  signer,
	}
}

/*
TestService_Login covers authentication and the anti-enumeration contract.
*/
func TestService_Login(t *testing.T) {
	t.Run("valid_credentials_establish_a_session", func(t *testing.T) {
		f := newFixture(t, knownUser(t))

		established, token, err := f.service.Login(context.Background(), "fercen", knownPassword)
		require.NoError(t, err)
		assert.Len(t, established.ID, 64)
		assert.Equal(t, sec.SessionUser, established.Type)
		assert.Equal(t, "user-id", established.UserID)
		assert.Contains(t, f.store.sessions, established.ID)

		// The token resolves back to the stored session ID.
		sessionID, err := f.signer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, established.ID, sessionID)
	})

	t.Run("unknown_username_and_wrong_password_are_indistinguishable", func(t *testing.T) {
		f := newFixture(t, knownUser(t))

		_, _, unknownErr := f.service.Login(context.Background(), "ninguem", knownPassword)
		_, _, wrongErr := f.service.Login(context.Background(), "fercen", "senha-errada")

		unknownAppError := apperr.As(unknownErr)
		wrongAppError := apperr.As(wrongErr)
		require.NotNil(t, unknownAppError)
		require.NotNil(t, wrongAppError)

		assert.Equal(t, unknownAppError.Message, wrongAppError.Message)
		assert.Equal(t, unknownAppError.StatusCode, wrongAppError.StatusCode)
		assert.Equal(t, "API:SESSIONS:POST:CREDENTIALS_MISMATCH", unknownAppError.ErrorLocationCode)
		assert.Equal(t, "API:SESSIONS:POST:CREDENTIALS_MISMATCH", wrongAppError.ErrorLocationCode)
	})

	t.Run("failed_login_stores_nothing", func(t *testing.T) {
		f := newFixture(t, knownUser(t))

		_, _, err := f.service.Login(context.Background(), "fercen", "senha-errada")
		require.Error(t, err)
		assert.Empty(t, f.store.sessions)
	})
}

/*
TestService_ResolveCookie covers the loader-facing resolution path.
*/
func TestService_ResolveCookie(t *testing.T) {
	t.Run("round_trip_through_login", func(t *testing.T) {
		f := newFixture(t, knownUser(t))

		established, token, err := f.service.Login(context.Background(), "fercen", knownPassword)
		require.NoError(t, err)

		resolved, err := f.service.ResolveCookie(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, established.ID, resolved.ID)
		assert.Equal(t, "fercen", resolved.Username)
		assert.False(t, resolved.IsAnonymous())
	})

	t.Run("forged_token_is_rejected", func(t *testing.T) {
		f := newFixture(t, knownUser(t))

		_, err := f.service.ResolveCookie(context.Background(), "forged.token.value")
		assert.Error(t, err)
	})

	t.Run("valid_token_without_a_record_is_not_found", func(t *testing.T) {
		f := newFixture(t, knownUser(t))

		token, err := f.signer.Sign("orphaned-session-id", time.Hour)
		require.NoError(t, err)

		_, err = f.service.ResolveCookie(context.Background(), token)
		assert.True(t, apperr.IsNotFoundError(err))
	})
}

/*
TestService_Logout covers record destruction.
*/
func TestService_Logout(t *testing.T) {
	f := newFixture(t, knownUser(t))

	established, _, err := f.service.Login(context.Background(), "fercen", knownPassword)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), established))
	assert.Empty(t, f.store.sessions)

	// Logging out an anonymous or already-destroyed session is a no-op.
	assert.NoError(t, f.service.Logout(context.Background(), sec.NewAnonymousSession()))
	assert.NoError(t, f.service.Logout(context.Background(), nil))
}
