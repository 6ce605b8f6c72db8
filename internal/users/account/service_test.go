// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package account_test

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
	"github.com/fercen/fercen/internal/platform/mail"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/users/account"
	"github.com/fercen/fercen/internal/users/invite"
	"github.com/fercen/fercen/pkg/pointer"
)

// # Fakes

type fakeUserRepository struct {
	users map[string]*account.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*account.User)}
}

func (repository *fakeUserRepository) Create(_ context.Context, user *account.User) error {
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *fakeUserRepository) GetByID(_ context.Context, id string) (*account.User, error) {
	stored, found := repository.users[id]
	if !found {
		return nil, apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:USERS:GET_BY_ID"})
	}
	clone := *stored
	return &clone, nil
}

func (repository *fakeUserRepository) GetByUsername(_ context.Context, username string) (*account.User, error) {
	for _, stored := range repository.users {
		if stored.Username == username {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:USERS:GET_BY_USERNAME"})
}

func (repository *fakeUserRepository) GetByEmail(_ context.Context, email string) (*account.User, error) {
	for _, stored := range repository.users {
		if stored.Email == email {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:USERS:GET_BY_EMAIL"})
}

func (repository *fakeUserRepository) List(_ context.Context) ([]*account.User, error) {
	users := make([]*account.User, 0, len(repository.users))
	for _, stored := range repository.users {
		users = append(users, stored)
	}
	return users, nil
}

func (repository *fakeUserRepository) Update(_ context.Context, user *account.User) error {
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

type fakeRecoveryRepository struct {
	codes map[string]*account.RecoveryCode
}

func newFakeRecoveryRepository() *fakeRecoveryRepository {
	return &fakeRecoveryRepository{codes: make(map[string]*account.RecoveryCode)}
}

func (repository *fakeRecoveryRepository) Create(_ context.Context, code *account.RecoveryCode) error {
	clone := *code
	repository.codes[code.ID] = &clone
	return nil
}

func (repository *fakeRecoveryRepository) GetByCode(_ context.Context, codeValue string) (*account.RecoveryCode, error) {
	for _, stored := range repository.codes {
		if stored.Code == codeValue {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:RECOVERY_CODES:GET_BY_CODE"})
}

func (repository *fakeRecoveryRepository) MarkUsed(_ context.Context, id string) error {
	stored, found := repository.codes[id]
	if !found {
		return apperr.NotFound(apperr.Opts{ErrorLocationCode: "STORE:RECOVERY_CODES:MARK_USED"})
	}
	now := time.Now().UTC()
	stored.Used = true
	stored.UsedAt = &now
	return nil
}

// fakeRedeemer controls the two Redeemable checks of the registration flow
// independently.
type fakeRedeemer struct {
	invite         *invite.Invite
	firstCheckErr  error
	secondCheckErr error

	checks   int
	consumed []string
}

func (redeemer *fakeRedeemer) Redeemable(_ context.Context, _ string) (*invite.Invite, error) {
	redeemer.checks++
	if redeemer.checks == 1 && redeemer.firstCheckErr != nil {
		return nil, redeemer.firstCheckErr
	}
	if redeemer.checks > 1 && redeemer.secondCheckErr != nil {
		return nil, redeemer.secondCheckErr
	}
	return redeemer.invite, nil
}

func (redeemer *fakeRedeemer) Consume(_ context.Context, id string) error {
	redeemer.consumed = append(redeemer.consumed, id)
	return nil
}

type recordingMailer struct {
	sent []mail.Message
}

func (mailer *recordingMailer) Send(_ context.Context, message mail.Message) error {
	mailer.sent = append(mailer.sent, message)
	return nil
}

// # Fixtures

// knownHash is computed once: bcrypt at the production cost factor is slow
// on purpose, and most tests only need one existing user with one password.
var (
	knownHashOnce sync.Once
	knownHash     string
)

const knownPassword = "SenhaSegura1"

func existingPasswordHash(t *testing.T) string {
	t.Helper()
	knownHashOnce.Do(func() {
		hash, err := sec.HashPassword(knownPassword)
		if err != nil {
			t.Fatalf("hashing fixture password: %v", err)
		}
		knownHash = hash
	})
	return knownHash
}

func pendingInvite() *invite.Invite {
	return &invite.Invite{ID: "invite-id", PublicID: "abc1234", TargetEmail: "novo@fercen.app"}
}

type fixture struct {
	service    *account.Service
	repository *fakeUserRepository
	recovery   *fakeRecoveryRepository
	redeemer   *fakeRedeemer
	mailer     *recordingMailer
}

func newFixture(redeemer *fakeRedeemer) *fixture {
	repository := newFakeUserRepository()
	recovery := newFakeRecoveryRepository()
	mailer := &recordingMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service:    account.NewService(repository, recovery, redeemer, mailer, "https://painel.fercen.app", logger),
		repository: repository,
		recovery:   recovery,
		redeemer:   redeemer,
		mailer:     mailer,
	}
}

func (f *fixture) seedUser(t *testing.T) *account.User {
	t.Helper()
	user := &account.User{
		ID:           "user-id",
		Username:     "fercen",
		Email:        "fercen@fercen.app",
		Permissions:  []sec.Permission{sec.PermissionReadUser, sec.PermissionUpdateUser},
		PasswordHash: existingPasswordHash(t),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.repository.Create(context.Background(), user))
	return user
}

func registration() account.CreateInput {
	return account.CreateInput{
		Username:   "novato",
		Email:      "novo@fercen.app",
		Password:   "OutraSenha9",
		InviteCode: "abc1234",
	}
}

// # Registration

/*
TestService_Create covers the invitation-gated registration flow.
*/
func TestService_Create(t *testing.T) {
	t.Run("registers_and_consumes_the_invite", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})

		created, err := f.service.Create(context.Background(), registration())
		require.NoError(t, err)
		assert.Equal(t, "novato", created.Username)
		assert.Equal(t, sec.DefaultUserPermissions, created.Permissions)
		assert.NotEqual(t, "OutraSenha9", created.PasswordHash)

		assert.Equal(t, 2, f.redeemer.checks, "invite must be re-verified before consumption")
		assert.Equal(t, []string{"invite-id"}, f.redeemer.consumed)
	})

	t.Run("invalid_invite_blocks_registration", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{
			invite: pendingInvite(),
			firstCheckErr: apperr.NotFound(apperr.Opts{
				ErrorLocationCode: "MODELS:INVITES:INVITE_NOT_FOUND",
			}),
		})

		_, err := f.service.Create(context.Background(), registration())
		require.Error(t, err)
		assert.Empty(t, f.repository.users)
		assert.Empty(t, f.redeemer.consumed)
	})

	t.Run("duplicate_username_rejected", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		f.seedUser(t)

		input := registration()
		input.Username = "fercen"
		_, err := f.service.Create(context.Background(), input)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "MODELS:USER:USERNAME_ALREADY_EXISTS", appError.ErrorLocationCode)
		assert.Equal(t, "username", appError.Key)
	})

	t.Run("duplicate_email_rejected", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		f.seedUser(t)

		input := registration()
		input.Email = "fercen@fercen.app"
		_, err := f.service.Create(context.Background(), input)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "MODELS:USER:EMAIL_ALREADY_EXISTS", appError.ErrorLocationCode)
	})

	t.Run("concurrent_consumption_keeps_the_account", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{
			invite: pendingInvite(),
			secondCheckErr: apperr.Validation(apperr.Opts{
				ErrorLocationCode: "MODELS:INVITES:INVITE_ALREADY_USED",
			}),
		})

		created, err := f.service.Create(context.Background(), registration())
		require.NoError(t, err, "the user write already happened; losing the race only skips consumption")
		assert.NotNil(t, created)
		assert.Empty(t, f.redeemer.consumed)
	})
}

// # Self-Service Updates

/*
TestService_UpdateSelf covers the proof-of-possession rule and change
notifications.
*/
func TestService_UpdateSelf(t *testing.T) {
	t.Run("wrong_current_password_rejected", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		user := f.seedUser(t)

		_, err := f.service.UpdateSelf(context.Background(), user.ID, account.UpdateSelfInput{
			Fullname: pointer.To("Novo Nome"),
			Password: "senha-errada",
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 400, appError.StatusCode)
		assert.Equal(t, "API:USER:PUT:CREDENTIALS_MISMATCH", appError.ErrorLocationCode)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("updates_fullname_and_mails_summary", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		user := f.seedUser(t)

		updated, err := f.service.UpdateSelf(context.Background(), user.ID, account.UpdateSelfInput{
			Fullname: pointer.To("Nome Completo"),
			Password: knownPassword,
		})
		require.NoError(t, err)
		assert.Equal(t, "Nome Completo", pointer.Val(updated.Fullname))

		require.Len(t, f.mailer.sent, 1)
		assert.Contains(t, f.mailer.sent[0].Body, "nome completo")
	})

	t.Run("email_change_enforces_uniqueness", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		user := f.seedUser(t)
		require.NoError(t, f.repository.Create(context.Background(), &account.User{
			ID:    "other-id",
			Email: "ocupado@fercen.app",
		}))

		_, err := f.service.UpdateSelf(context.Background(), user.ID, account.UpdateSelfInput{
			Email:    pointer.To("ocupado@fercen.app"),
			Password: knownPassword,
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "MODELS:USER:EMAIL_ALREADY_EXISTS", appError.ErrorLocationCode)
	})

	t.Run("no_changes_skips_write_and_mail", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		user := f.seedUser(t)

		updated, err := f.service.UpdateSelf(context.Background(), user.ID, account.UpdateSelfInput{
			Password: knownPassword,
		})
		require.NoError(t, err)
		assert.Equal(t, user.UpdatedAt, updated.UpdatedAt)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("password_rotation_changes_the_hash", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		user := f.seedUser(t)

		updated, err := f.service.UpdateSelf(context.Background(), user.ID, account.UpdateSelfInput{
			NewPassword: pointer.To("SenhaNovissima2"),
			Password:    knownPassword,
		})
		require.NoError(t, err)
		assert.True(t, sec.CheckPasswordHash("SenhaNovissima2", updated.PasswordHash))
	})
}

// # Administrative Updates

/*
TestService_UpdateOther covers canonical-set enforcement on permission grants.
*/
func TestService_UpdateOther(t *testing.T) {
	t.Run("grants_canonical_permissions", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		user := f.seedUser(t)

		updated, err := f.service.UpdateOther(context.Background(), account.UpdateOtherInput{
			ID:          user.ID,
			Permissions: []string{"read:user", "create:invite"},
		})
		require.NoError(t, err)
		assert.Equal(t, []sec.Permission{sec.PermissionReadUser, sec.PermissionCreateInvite}, updated.Permissions)
		require.Len(t, f.mailer.sent, 1)
	})

	t.Run("unknown_permission_names_the_value", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		user := f.seedUser(t)

		_, err := f.service.UpdateOther(context.Background(), account.UpdateOtherInput{
			ID:          user.ID,
			Permissions: []string{"read:user", "read:nonsense"},
		})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "API:USER:PATCH:INVALID_PERMISSION", appError.ErrorLocationCode)
		assert.Equal(t, "read:nonsense", appError.Key)
		assert.Equal(t, "any.only", appError.Type)
	})

	t.Run("unknown_user_is_not_found", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})

		_, err := f.service.UpdateOther(context.Background(), account.UpdateOtherInput{ID: "missing"})
		assert.True(t, apperr.IsNotFoundError(err))
	})
}

// # Password Recovery

/*
TestService_Recovery covers the request/verify/consume cycle.
*/
func TestService_Recovery(t *testing.T) {
	t.Run("request_requires_a_lookup_field", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})

		_, err := f.service.RequestRecovery(context.Background(), account.RecoveryLookup{})
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "API:USER:RECOVER:POST:MISSING_LOOKUP", appError.ErrorLocationCode)
	})

	t.Run("request_by_username_mails_the_code", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		f.seedUser(t)

		record, err := f.service.RequestRecovery(context.Background(), account.RecoveryLookup{
			Username: pointer.To("fercen"),
		})
		require.NoError(t, err)
		assert.Len(t, record.Code, 8)
		assert.Equal(t, "user-id", record.UserID)

		require.Len(t, f.mailer.sent, 1)
		assert.Contains(t, f.mailer.sent[0].Body, record.Code)
	})

	t.Run("request_for_unknown_email_is_not_found", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})

		_, err := f.service.RequestRecovery(context.Background(), account.RecoveryLookup{
			Email: pointer.To("ninguem@fercen.app"),
		})
		assert.True(t, apperr.IsNotFoundError(err))
	})

	t.Run("verify_then_consume_rotates_the_password", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		f.seedUser(t)

		record, err := f.service.RequestRecovery(context.Background(), account.RecoveryLookup{
			Username: pointer.To("fercen"),
		})
		require.NoError(t, err)

		_, err = f.service.VerifyRecovery(context.Background(), record.Code)
		require.NoError(t, err)

		user, err := f.service.ConsumeRecovery(context.Background(), record.Code, "SenhaRecuperada3")
		require.NoError(t, err)
		assert.True(t, sec.CheckPasswordHash("SenhaRecuperada3", user.PasswordHash))

		// The code is single-use.
		_, err = f.service.ConsumeRecovery(context.Background(), record.Code, "MaisUmaSenha4")
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "API:USER:RECOVER:PUT:RECOVERY_CODE_EXPIRED", appError.ErrorLocationCode)
	})

	t.Run("expired_code_is_rejected_on_verify", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})
		f.seedUser(t)

		expired := &account.RecoveryCode{
			ID:        "recovery-id",
			Code:      "c0d3c0d3",
			UserID:    "user-id",
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
			CreatedAt: time.Now().UTC().Add(-time.Hour),
		}
		require.NoError(t, f.recovery.Create(context.Background(), expired))

		_, err := f.service.VerifyRecovery(context.Background(), "c0d3c0d3")
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "API:USER:RECOVER:GET:RECOVERY_CODE_EXPIRED", appError.ErrorLocationCode)
		assert.Equal(t, "recoveryCode", appError.Key)
	})

	t.Run("unknown_code_is_not_found", func(t *testing.T) {
		f := newFixture(&fakeRedeemer{invite: pendingInvite()})

		_, err := f.service.VerifyRecovery(context.Background(), "desconhe")
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 404, appError.StatusCode)
		assert.Equal(t, "API:USER:RECOVER:RECOVERY_CODE_NOT_FOUND", appError.ErrorLocationCode)
	})
}
