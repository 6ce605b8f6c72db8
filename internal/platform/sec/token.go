// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

// Package sec provides cryptographic primitives, the permission model, and
// the capability check for FERCEN.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, cookie token
// signing, authorization) from the domain logic. It has no I/O: session
// storage lives in internal/users/session, and the middleware chain wires
// both together per request.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieSigner signs and verifies the opaque session reference carried by
// the client cookie.
//
// # Why a signed token instead of a raw ID?
//
// The cookie value is the only client-held session material. Signing it
// (HS256 over the session ID) means a forged or truncated cookie is
// rejected before any Redis lookup happens.
type CookieSigner struct {
	secret []byte
	issuer string
}

// NewCookieSigner creates a CookieSigner from the shared cookie secret.
func NewCookieSigner(secret, issuer string) (*CookieSigner, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("sec: cookie secret must be at least 32 bytes")
	}

	return &CookieSigner{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// Sign produces a signed token referencing the given session ID.
func (signer *CookieSigner) Sign(sessionID string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    signer.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(signer.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a cookie token and returns
// the session ID it references.
func (signer *CookieSigner) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return signer.secret, nil
		},
		jwt.WithIssuer(signer.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("sec: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("sec: invalid session token claims")
	}

	return claims.Subject, nil
}
