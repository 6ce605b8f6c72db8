// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package sec

import "time"

// # Sessions

// SessionType discriminates the two variants of [Session].
type SessionType string

const (
	// SessionAnonymous is a default session assigned to requests without a
	// valid cookie. It carries only [AnonymousPermissions].
	SessionAnonymous SessionType = "anonymous"

	// SessionUser is a session established by a successful login.
	SessionUser SessionType = "user"
)

// ProviderLink records a connection between a FERCEN account and an external
// identity provider.
type ProviderLink struct {
	UID         string    `json:"uid"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Session is the server-held record of the current caller's identity and
// granted capabilities.
//
// It is computed once per request by the session loader middleware and
// threaded as an immutable value into handlers; mutating a Session after the
// loader ran has no effect on the stored record.
type Session struct {
	// ID is the opaque server-side identifier, referenced by the signed
	// cookie. It is the Redis key suffix and never serialized to clients.
	ID string `json:"-"`

	Type        SessionType  `json:"type"`
	UserID      string       `json:"id,omitempty"`
	Username    string       `json:"username,omitempty"`
	Email       string       `json:"email,omitempty"`
	Fullname    *string      `json:"fullname,omitempty"`
	Permissions []Permission `json:"permissions"`

	GoogleProvider    *ProviderLink `json:"googleProvider,omitempty"`
	MicrosoftProvider *ProviderLink `json:"microsoftProvider,omitempty"`
}

// NewAnonymousSession builds the default session for requests without a
// valid cookie.
func NewAnonymousSession() *Session {
	permissions := make([]Permission, len(AnonymousPermissions))
	copy(permissions, AnonymousPermissions)

	return &Session{
		Type:        SessionAnonymous,
		Permissions: permissions,
	}
}

// IsAnonymous reports whether the session has no authenticated user behind it.
func (s *Session) IsAnonymous() bool {
	return s.Type != SessionUser
}

// Has reports whether the session carries the given permission.
func (s *Session) Has(permission Permission) bool {
	for _, p := range s.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
