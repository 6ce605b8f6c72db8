// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateCode returns a URL-safe random code of exactly length characters,
// drawn from [A-Za-z0-9_-].
//
// Invite public IDs and password recovery codes are produced here, so the
// alphabet must stay in sync with the validator's pattern for those fields.
func GenerateCode(length int) (string, error) {
	// base64url expands 3 bytes into 4 characters, so length random bytes
	// always encode to at least length characters; trim the excess.
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate random code: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(buffer)
	return encoded[:length], nil
}
