// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package invite_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fercen/fercen/internal/platform/apperr"
	"github.com/fercen/fercen/internal/platform/mail"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/users/invite"
)

// fakeRepository keeps invites in memory, mirroring the store's NotFound
// semantics.
type fakeRepository struct {
	invites map[string]*invite.Invite
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{invites: make(map[string]*invite.Invite)}
}

func (repository *fakeRepository) Create(_ context.Context, created *invite.Invite) error {
	clone := *created
	repository.invites[created.ID] = &clone
	return nil
}

func (repository *fakeRepository) List(_ context.Context) ([]*invite.Invite, error) {
	invites := make([]*invite.Invite, 0, len(repository.invites))
	for _, stored := range repository.invites {
		invites = append(invites, stored)
	}
	return invites, nil
}

func (repository *fakeRepository) GetByPublicID(_ context.Context, publicID string) (*invite.Invite, error) {
	for _, stored := range repository.invites {
		if stored.PublicID == publicID {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:INVITES:GET_BY_PUBLIC_ID"})
}

func (repository *fakeRepository) GetByTargetEmail(_ context.Context, email string) (*invite.Invite, error) {
	for _, stored := range repository.invites {
		if stored.TargetEmail == email {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:INVITES:GET_BY_TARGET_EMAIL"})
}

func (repository *fakeRepository) MarkUsed(_ context.Context, id string) error {
	stored, found := repository.invites[id]
	if !found {
		return apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:INVITES:MARK_USED"})
	}
	now := time.Now().UTC()
	stored.Used = true
	stored.UsedAt = &now
	return nil
}

func (repository *fakeRepository) Delete(_ context.Context, id string) error {
	delete(repository.invites, id)
	return nil
}

// recordingMailer captures sent messages and can be told to fail.
type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (mailer *recordingMailer) Send(_ context.Context, message mail.Message) error {
	if mailer.err != nil {
		return mailer.err
	}
	mailer.sent = append(mailer.sent, message)
	return nil
}

func adminSession() *sec.Session {
	return &sec.Session{
		Type:        sec.SessionUser,
		UserID:      "admin-id",
		Username:    "admin",
		Email:       "admin@fercen.app",
		Permissions: []sec.Permission{sec.PermissionCreateInvite},
	}
}

func newService(repository invite.Repository, mailer mail.Mailer) *invite.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return invite.NewService(repository, mailer, "https://painel.fercen.app", logger)
}

/*
TestService_Create covers issuance, the one-invite-per-email policy, and the
mail-is-best-effort contract.
*/
func TestService_Create(t *testing.T) {
	t.Run("issues_and_mails_the_link", func(t *testing.T) {
		repository := newFakeRepository()
		mailer := &recordingMailer{}
		service := newService(repository, mailer)

		created, err := service.Create(context.Background(), "novo@fercen.app", adminSession())
		require.NoError(t, err)
		assert.Len(t, created.PublicID, 7)
		assert.Equal(t, "novo@fercen.app", created.TargetEmail)
		assert.Equal(t, "admin-id", created.InvitedByID)
		assert.False(t, created.Used)

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "novo@fercen.app", mailer.sent[0].To)
		assert.Contains(t, mailer.sent[0].Body, "/cadastro?invite="+created.PublicID)
	})

	t.Run("pending_invite_blocks_reissue", func(t *testing.T) {
		repository := newFakeRepository()
		service := newService(repository, &recordingMailer{})

		_, err := service.Create(context.Background(), "novo@fercen.app", adminSession())
		require.NoError(t, err)

		_, err = service.Create(context.Background(), "novo@fercen.app", adminSession())
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 400, appError.StatusCode)
		assert.Equal(t, "API:INVITES:POST:INVITE_EXISTS", appError.ErrorLocationCode)
	})

	t.Run("consumed_invite_blocks_reissue", func(t *testing.T) {
		repository := newFakeRepository()
		service := newService(repository, &recordingMailer{})

		created, err := service.Create(context.Background(), "novo@fercen.app", adminSession())
		require.NoError(t, err)
		require.NoError(t, service.Consume(context.Background(), created.ID))

		_, err = service.Create(context.Background(), "novo@fercen.app", adminSession())
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "API:INVITES:POST:INVITE_USED", appError.ErrorLocationCode)
	})

	t.Run("mail_failure_does_not_roll_back", func(t *testing.T) {
		repository := newFakeRepository()
		mailer := &recordingMailer{err: errors.New("mailgun down")}
		service := newService(repository, mailer)

		created, err := service.Create(context.Background(), "novo@fercen.app", adminSession())
		require.NoError(t, err)
		assert.NotNil(t, created)
		assert.Len(t, repository.invites, 1)
	})
}

/*
TestService_Delete covers removal by public code.
*/
func TestService_Delete(t *testing.T) {
	repository := newFakeRepository()
	service := newService(repository, &recordingMailer{})

	created, err := service.Create(context.Background(), "novo@fercen.app", adminSession())
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), created.PublicID))
	assert.Empty(t, repository.invites)

	err = service.Delete(context.Background(), created.PublicID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.StatusCode)
	assert.Equal(t, "API:INVITES:DELETE:INVITE_NOT_FOUND", appError.ErrorLocationCode)
}

/*
TestService_Redeemable covers the registration-flow checks.
*/
func TestService_Redeemable(t *testing.T) {
	repository := newFakeRepository()
	service := newService(repository, &recordingMailer{})

	created, err := service.Create(context.Background(), "novo@fercen.app", adminSession())
	require.NoError(t, err)

	t.Run("pending_invite_is_redeemable", func(t *testing.T) {
		pending, err := service.Redeemable(context.Background(), created.PublicID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, pending.ID)
	})

	t.Run("unknown_code_is_not_found", func(t *testing.T) {
		_, err := service.Redeemable(context.Background(), "zzzzzzz")
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 404, appError.StatusCode)
		assert.Equal(t, "MODELS:INVITES:INVITE_NOT_FOUND", appError.ErrorLocationCode)
		assert.Equal(t, "invite", appError.Key)
	})

	t.Run("consumed_invite_is_rejected", func(t *testing.T) {
		require.NoError(t, service.Consume(context.Background(), created.ID))

		_, err := service.Redeemable(context.Background(), created.PublicID)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 400, appError.StatusCode)
		assert.Equal(t, "MODELS:INVITES:INVITE_ALREADY_USED", appError.ErrorLocationCode)
	})
}
