// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package account handles user registration, profile management, permission
administration, and password recovery.

# Architecture

  - Entities: User, RecoveryCode.
  - Service: Orchestrates the invitation-gated registration flow,
    self-service updates, administrative updates, and the recovery cycle.
  - Storage: PostgreSQL repositories; recovery codes live in the relational
    store (not Redis) so an operator can audit issued codes.

Registration is invitation-only: the service consumes invites through the
narrow [InviteRedeemer] contract instead of depending on the invite service
directly.
*/
package account

import (
	"context"
	"time"

	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/users/invite"
)

// # Domain Entities

// User is a registered FERCEN administrator account.
//
// PasswordHash is never serialized; every read endpoint returns users
// passwordless by construction.
type User struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	Fullname    *string          `json:"fullname"`
	Permissions []sec.Permission `json:"permissions"`

	PasswordHash string `json:"-"`

	GoogleProvider    *sec.ProviderLink `json:"googleProvider,omitempty"`
	MicrosoftProvider *sec.ProviderLink `json:"microsoftProvider,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecoveryCode is a short-lived single-use password reset grant.
//
// The code itself is only ever delivered by email; it is excluded from JSON
// so the issue/verify endpoints cannot leak it.
type RecoveryCode struct {
	ID     string `json:"id"`
	Code   string `json:"-"`
	UserID string `json:"-"`

	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Expired reports whether the code's validity window has passed.
func (code *RecoveryCode) Expired(now time.Time) bool {
	return now.After(code.ExpiresAt)
}

// # Contracts

// Repository abstracts user persistence.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
}

// RecoveryRepository abstracts recovery code persistence.
type RecoveryRepository interface {
	Create(ctx context.Context, code *RecoveryCode) error
	GetByCode(ctx context.Context, code string) (*RecoveryCode, error)
	MarkUsed(ctx context.Context, id string) error
}

// InviteRedeemer is the slice of the invite service the registration flow
// needs: check that a code is still honorable, and consume it.
type InviteRedeemer interface {
	Redeemable(ctx context.Context, publicID string) (*invite.Invite, error)
	Consume(ctx context.Context, id string) error
}
