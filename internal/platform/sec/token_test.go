// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fercen/fercen/internal/platform/sec"
)

const testCookieSecret = "0123456789abcdef0123456789abcdef"

/*
TestCookieSigner_RoundTrip verifies that a signed token resolves back to the
session ID it was issued for.
*/
func TestCookieSigner_RoundTrip(t *testing.T) {
	signer, err := sec.NewCookieSigner(testCookieSecret, "fercen")
	require.NoError(t, err)

	token, err := signer.Sign("session-abc", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sessionID, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "session-abc", sessionID)
}

/*
TestCookieSigner_Rejections covers the forged and stale token paths.
*/
func TestCookieSigner_Rejections(t *testing.T) {
	signer, err := sec.NewCookieSigner(testCookieSecret, "fercen")
	require.NoError(t, err)

	t.Run("garbage_token", func(t *testing.T) {
		_, err := signer.Verify("not.a.token")
		assert.Error(t, err)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		otherSigner, err := sec.NewCookieSigner("fedcba9876543210fedcba9876543210", "fercen")
		require.NoError(t, err)

		token, err := otherSigner.Sign("session-abc", time.Hour)
		require.NoError(t, err)

		_, err = signer.Verify(token)
		assert.Error(t, err)
	})

	t.Run("wrong_issuer", func(t *testing.T) {
		otherSigner, err := sec.NewCookieSigner(testCookieSecret, "someone-else")
		require.NoError(t, err)

		token, err := otherSigner.Sign("session-abc", time.Hour)
		require.NoError(t, err)

		_, err = signer.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired_token", func(t *testing.T) {
		token, err := signer.Sign("session-abc", -time.Minute)
		require.NoError(t, err)

		_, err = signer.Verify(token)
		assert.Error(t, err)
	})
}

/*
TestNewCookieSigner_SecretLength enforces the minimum secret size.
*/
func TestNewCookieSigner_SecretLength(t *testing.T) {
	_, err := sec.NewCookieSigner("too-short", "fercen")
	assert.Error(t, err)
}
