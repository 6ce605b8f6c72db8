// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package invite manages account invitations.

Registration on FERCEN is invitation-only: an administrator issues an invite
to a target email, the invitee receives a link carrying a short public code,
and the registration flow consumes that code exactly once.

# Architecture

  - Entity: Invite, keyed by a 7-character URL-safe public ID.
  - Service: Issue/list/delete plus the consumption hooks used by the
    registration flow.
  - Storage: PostgreSQL repository.
*/
package invite

import (
	"context"
	"time"
)

// # Domain Entities

// Invite is a single-use registration grant for one email address.
type Invite struct {
	ID string `json:"id"`

	// PublicID is the short code embedded in the invitation link and typed
	// by nobody: the link carries it. Alphabet [A-Za-z0-9_-], length 7.
	PublicID string `json:"publicId"`

	TargetEmail    string `json:"targetEmail"`
	InvitedByID    string `json:"invitedById"`
	InvitedByEmail string `json:"invitedByEmail"`

	Used   bool       `json:"used"`
	UsedAt *time.Time `json:"usedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// # Contracts

// Repository abstracts invite persistence.
type Repository interface {
	Create(ctx context.Context, invite *Invite) error
	List(ctx context.Context) ([]*Invite, error)

	// GetByPublicID returns the invite for a public code, or a NotFound
	// error when no such invite exists.
	GetByPublicID(ctx context.Context, publicID string) (*Invite, error)

	// GetByTargetEmail returns the most recent invite issued to an email,
	// or a NotFound error when none exists.
	GetByTargetEmail(ctx context.Context, email string) (*Invite, error)

	// MarkUsed flips the used flag and stamps usedAt.
	MarkUsed(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error
}
