// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package sec

import (
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/fercen/fercen/internal/platform/constants"
)

// hashCost trades login latency for brute-force resistance. 12 keeps a
// single hash under ~300ms on current hardware.
const hashCost = 12

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// Transient hashing failures are retried with the platform's fixed bounded
// policy before surfacing; everything past the retry budget is an internal
// error for the caller to wrap.
func HashPassword(plainTextPassword string) (string, error) {
	var hashedBytes []byte

	operation := func() error {
		var err error
		hashedBytes, err = bcrypt.GenerateFromPassword([]byte(plainTextPassword), hashCost)
		return err
	}

	// WithMaxRetries counts retries after the first attempt, so the budget
	// is attempts-1.
	policy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(constants.RetryInterval),
		constants.RetryMaxAttempts-1,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version
// in constant time.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
