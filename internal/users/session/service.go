// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package session

import (
	"context"
	"log/slog"

	"github.com/fercen/fercen/internal/platform/apperr"
	"github.com/fercen/fercen/internal/platform/constants"
	"github.com/fercen/fercen/internal/platform/sec"
)

// sessionIDLength sizes the opaque Redis key suffix. 64 URL-safe characters
// gives 384 bits of entropy; guessing a live session is not a concern.
const sessionIDLength = 64

// # Service Layer

// Service orchestrates login, cookie resolution, and logout.
type Service struct {
	store  Store
	users  UserDirectory
	signer *sec.CookieSigner
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, users UserDirectory, signer *sec.CookieSigner, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		users:  users,
		signer: signer,
		logger: logger,
	}
}

/*
Login authenticates a user and establishes a session.

Description: An unknown username and a wrong password produce the SAME error
on purpose, so the login form cannot be used to enumerate accounts.

Parameters:
  - ctx: context.Context
  - username: Sanitized (lowercased) username.
  - password: Plain-text password.

Returns:
  - *sec.Session: The established user session.
  - string: The signed cookie token referencing it.
  - error: Credential mismatch or storage failures.
*/
func (service *Service) Login(ctx context.Context, username, password string) (*sec.Session, string, error) {
	user, err := service.users.GetByUsername(ctx, username)
	if err != nil {
		if apperr.IsNotFoundError(err) {
			return nil, "", credentialsMismatch()
		}
		return nil, "", err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", credentialsMismatch()
	}

	sessionID, err := sec.GenerateCode(sessionIDLength)
	if err != nil {
		return nil, "", apperr.Internal(apperr.Opts{
			ErrorLocationCode: "API:SESSIONS:POST:ID_GENERATION",
			Cause:             err,
		})
	}

	permissions := make([]sec.Permission, len(user.Permissions))
	copy(permissions, user.Permissions)

	established := &sec.Session{
		ID:                sessionID,
		Type:              sec.SessionUser,
		UserID:            user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Fullname:          user.Fullname,
		Permissions:       permissions,
		GoogleProvider:    user.GoogleProvider,
		MicrosoftProvider: user.MicrosoftProvider,
	}

	if err := service.store.Create(ctx, established); err != nil {
		return nil, "", apperr.Internal(apperr.Opts{
			ErrorLocationCode: "API:SESSIONS:POST:STORE",
			Cause:             err,
		})
	}

	token, err := service.signer.Sign(sessionID, constants.SessionTTL)
	if err != nil {
		return nil, "", apperr.Internal(apperr.Opts{
			ErrorLocationCode: "API:SESSIONS:POST:SIGNING",
			Cause:             err,
		})
	}

	service.logger.Info("session_created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return established, token, nil
}

/*
ResolveCookie turns a cookie value into the stored session it references.

Description: This is the [middleware.SessionResolver] implementation wired
into the loader. Verification failures and absent records return errors; the
loader maps every error to an anonymous session.

Returns:
  - *sec.Session: The stored user session.
  - error: Signature, expiry, or storage failures.
*/
func (service *Service) ResolveCookie(ctx context.Context, cookieValue string) (*sec.Session, error) {
	sessionID, err := service.signer.Verify(cookieValue)
	if err != nil {
		return nil, err
	}

	return service.store.Get(ctx, sessionID)
}

// Logout destroys the session record. The caller expires the cookie.
func (service *Service) Logout(ctx context.Context, session *sec.Session) error {
	if session == nil || session.ID == "" {
		return nil
	}

	if err := service.store.Delete(ctx, session.ID); err != nil {
		return apperr.Internal(apperr.Opts{
			ErrorLocationCode: "API:SESSIONS:DELETE:STORE",
			Cause:             err,
		})
	}

	service.logger.Info("session_destroyed", slog.String("user_id", session.UserID))
	return nil
}

func credentialsMismatch() error {
	return apperr.Validation(apperr.Opts{
		Message:           "Dados não conferem.",
		Action:            "Verifique se os dados enviados estão corretos.",
		ErrorLocationCode: "API:SESSIONS:POST:CREDENTIALS_MISMATCH",
	})
}
