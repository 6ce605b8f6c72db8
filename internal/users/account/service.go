// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fercen/fercen/internal/platform/apperr"
	"github.com/fercen/fercen/internal/platform/constants"
	"github.com/fercen/fercen/internal/platform/mail"
	"github.com/fercen/fercen/internal/platform/sec"
)

// # Service Layer

// Service orchestrates business logic for user accounts.
type Service struct {
	repository         Repository
	recoveryRepository RecoveryRepository
	invites            InviteRedeemer
	mailer             mail.Mailer
	baseURL            string
	logger             *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	repository Repository,
	recoveryRepository RecoveryRepository,
	invites InviteRedeemer,
	mailer mail.Mailer,
	baseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		repository:         repository,
		recoveryRepository: recoveryRepository,
		invites:            invites,
		mailer:             mailer,
		baseURL:            baseURL,
		logger:             logger,
	}
}

// CreateInput carries the sanitized registration payload.
type CreateInput struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"invite"`
}

/*
Create registers a new user through an invitation.

Description: The invite is verified before the user write and re-verified
immediately before being marked used, so two concurrent registrations racing
on the same code cannot both consume it silently. Marking the invite used is
a separate write after user creation with no compensating rollback: when it
fails, the invite stays technically honorable, but the duplicate email check
blocks a second account, which bounds the damage. The failure is logged.

Parameters:
  - ctx: context.Context
  - input: Sanitized registration fields.

Returns:
  - *User: The created account with default permissions.
  - error: Invite policy, uniqueness, hashing, or storage failures.
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	pendingInvite, err := service.invites.Redeemable(ctx, input.InviteCode)
	if err != nil {
		return nil, err
	}

	if err := service.ensureUniqueUsername(ctx, input.Username); err != nil {
		return nil, err
	}
	if err := service.ensureUniqueEmail(ctx, input.Email); err != nil {
		return nil, err
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(apperr.Opts{
			ErrorLocationCode: "MODELS:USER:PASSWORD_HASHING",
			Cause:             err,
		})
	}

	permissions := make([]sec.Permission, len(sec.DefaultUserPermissions))
	copy(permissions, sec.DefaultUserPermissions)

	currentTime := time.Now().UTC()
	created := &User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		Permissions:  permissions,
		PasswordHash: passwordHash,
		CreatedAt:    currentTime,
		UpdatedAt:    currentTime,
	}

	if err := service.repository.Create(ctx, created); err != nil {
		return nil, err
	}

	// Re-verify before consuming: a concurrent registration may have used
	// the invite between the first check and our user write.
	if _, err := service.invites.Redeemable(ctx, input.InviteCode); err != nil {
		service.logger.Warn("invite_consumed_concurrently",
			slog.String("user_id", created.ID),
			slog.Any("error", err),
		)
		return created, nil
	}

	if err := service.invites.Consume(ctx, pendingInvite.ID); err != nil {
		service.logger.Error("invite_mark_used_failed",
			slog.String("invite_id", pendingInvite.ID),
			slog.String("user_id", created.ID),
			slog.Any("error", err),
		)
	}

	return created, nil
}

// List returns every registered user, passwordless.
func (service *Service) List(ctx context.Context) ([]*User, error) {
	return service.repository.List(ctx)
}

// GetByID returns one user by internal ID.
func (service *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return service.repository.GetByID(ctx, id)
}

// UpdateSelfInput carries the sanitized self-service update payload.
// Password is the CURRENT password, required as proof of possession.
type UpdateSelfInput struct {
	Fullname    *string `json:"fullname"`
	Email       *string `json:"email"`
	NewPassword *string `json:"newPassword"`
	Password    string  `json:"password"`
}

/*
UpdateSelf applies a user's changes to their own account.

Description: Every self-service change requires the current password, even
when the password itself is not being changed: a hijacked session must not
be able to rotate the account's email silently.

Parameters:
  - ctx: context.Context
  - actingUserID: The authenticated user's ID (from the session).
  - input: Sanitized fields; nil pointers mean "unchanged".

Returns:
  - *User: The updated account.
  - error: Credential mismatch, uniqueness, or storage failures.
*/
func (service *Service) UpdateSelf(ctx context.Context, actingUserID string, input UpdateSelfInput) (*User, error) {
	user, err := service.repository.GetByID(ctx, actingUserID)
	if err != nil {
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Validation(apperr.Opts{
			Message:           "A senha informada não confere com a senha do usuário.",
			Action:            "Verifique a senha informada e tente novamente.",
			ErrorLocationCode: "API:USER:PUT:CREDENTIALS_MISMATCH",
			Key:               "password",
		})
	}

	changes := make([]string, 0, 3)

	if input.Fullname != nil {
		user.Fullname = input.Fullname
		changes = append(changes, "nome completo")
	}

	if input.Email != nil && *input.Email != user.Email {
		if err := service.ensureUniqueEmail(ctx, *input.Email); err != nil {
			return nil, err
		}
		user.Email = *input.Email
		changes = append(changes, "email")
	}

	if input.NewPassword != nil {
		newHash, err := sec.HashPassword(*input.NewPassword)
		if err != nil {
			return nil, apperr.Internal(apperr.Opts{
				ErrorLocationCode: "MODELS:USER:PASSWORD_HASHING",
				Cause:             err,
			})
		}
		user.PasswordHash = newHash
		changes = append(changes, "senha")
	}

	if len(changes) == 0 {
		return user, nil
	}

	user.UpdatedAt = time.Now().UTC()
	if err := service.repository.Update(ctx, user); err != nil {
		return nil, err
	}

	service.sendNotification(ctx, mail.Message{
		To:      user.Email,
		Subject: "Alterações na sua conta FERCEN",
		Body: fmt.Sprintf(
			"Os seguintes dados da sua conta foram alterados: %s.\n\n"+
				"Caso não reconheça esta alteração, recupere sua senha imediatamente em %s/recuperar.",
			joinChanges(changes), service.baseURL,
		),
	}, user.ID, "account_change_mail_failed")

	return user, nil
}

// UpdateOtherInput carries the sanitized administrative update payload.
type UpdateOtherInput struct {
	ID          string   `json:"id"`
	Fullname    *string  `json:"fullname"`
	Email       *string  `json:"email"`
	Permissions []string `json:"permissions"`
}

/*
UpdateOther applies an administrator's changes to another user's account.

Description: The validator only checks permission SYNTAX (lowercase tag
shape); membership in the canonical set is enforced here, with the first
offending value surfaced in Key.

Parameters:
  - ctx: context.Context
  - input: Sanitized fields; nil pointers / nil slice mean "unchanged".

Returns:
  - *User: The updated account.
  - error: Unknown permission, uniqueness, NotFound, or storage failures.
*/
func (service *Service) UpdateOther(ctx context.Context, input UpdateOtherInput) (*User, error) {
	user, err := service.repository.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Fullname != nil {
		user.Fullname = input.Fullname
	}

	if input.Email != nil && *input.Email != user.Email {
		if err := service.ensureUniqueEmail(ctx, *input.Email); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}

	if input.Permissions != nil {
		granted := make([]sec.Permission, 0, len(input.Permissions))
		for _, tag := range input.Permissions {
			permission := sec.Permission(tag)
			if !permission.Valid() {
				return nil, apperr.Validation(apperr.Opts{
					Message:           "A permissão informada não existe.",
					Action:            "Verifique a permissão do campo 'key' e tente novamente.",
					ErrorLocationCode: "API:USER:PATCH:INVALID_PERMISSION",
					Key:               tag,
					Type:              "any.only",
				})
			}
			granted = append(granted, permission)
		}
		user.Permissions = granted
	}

	user.UpdatedAt = time.Now().UTC()
	if err := service.repository.Update(ctx, user); err != nil {
		return nil, err
	}

	service.sendNotification(ctx, mail.Message{
		To:      user.Email,
		Subject: "Sua conta FERCEN foi atualizada",
		Body: "Um administrador atualizou dados da sua conta FERCEN.\n\n" +
			"Caso tenha dúvidas sobre a alteração, contate a administração.",
	}, user.ID, "admin_change_mail_failed")

	return user, nil
}

// # Password Recovery

// RecoveryLookup identifies the account asking for recovery; exactly one of
// the fields must be set.
type RecoveryLookup struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

/*
RequestRecovery issues a recovery code for the identified account and mails it.

Parameters:
  - ctx: context.Context
  - lookup: username or email of the account.

Returns:
  - *RecoveryCode: The issued code record (the code value itself travels
    only by email).
  - error: Validation when neither lookup field is given, NotFound when no
    account matches.
*/
func (service *Service) RequestRecovery(ctx context.Context, lookup RecoveryLookup) (*RecoveryCode, error) {
	var user *User
	var err error

	switch {
	case lookup.Username != nil:
		user, err = service.repository.GetByUsername(ctx, *lookup.Username)
	case lookup.Email != nil:
		user, err = service.repository.GetByEmail(ctx, *lookup.Email)
	default:
		return nil, apperr.Validation(apperr.Opts{
			Message:           "É necessário informar um 'username' ou 'email' para recuperar a senha.",
			Action:            "Informe um dos campos e tente novamente.",
			ErrorLocationCode: "API:USER:RECOVER:POST:MISSING_LOOKUP",
		})
	}
	if err != nil {
		return nil, err
	}

	codeValue, err := sec.GenerateCode(constants.RecoveryCodeLength)
	if err != nil {
		return nil, apperr.Internal(apperr.Opts{
			ErrorLocationCode: "API:USER:RECOVER:POST:CODE_GENERATION",
			Cause:             err,
		})
	}

	currentTime := time.Now().UTC()
	record := &RecoveryCode{
		ID:        uuid.NewString(),
		Code:      codeValue,
		UserID:    user.ID,
		ExpiresAt: currentTime.Add(constants.RecoveryCodeValidity),
		CreatedAt: currentTime,
	}

	if err := service.recoveryRepository.Create(ctx, record); err != nil {
		return nil, err
	}

	service.sendNotification(ctx, mail.Message{
		To:      user.Email,
		Subject: "Recuperação de senha FERCEN",
		Body: fmt.Sprintf(
			"Utilize o código abaixo para redefinir sua senha. Ele expira em %d minutos.\n\n"+
				"Código: %s\n\n"+
				"Ou acesse diretamente: %s/recuperar?recoveryCode=%s",
			int(constants.RecoveryCodeValidity.Minutes()), codeValue, service.baseURL, codeValue,
		),
	}, user.ID, "recovery_mail_failed")

	return record, nil
}

/*
VerifyRecovery checks that a recovery code exists and is still redeemable.

Returns:
  - *RecoveryCode: The valid record.
  - error: NotFound when absent, Validation when used or expired.
*/
func (service *Service) VerifyRecovery(ctx context.Context, code string) (*RecoveryCode, error) {
	record, err := service.recoveryRepository.GetByCode(ctx, code)
	if err != nil {
		if apperr.IsNotFoundError(err) {
			return nil, service.recoveryNotFound()
		}
		return nil, err
	}

	if record.Used || record.Expired(time.Now().UTC()) {
		return nil, service.recoveryExpired("API:USER:RECOVER:GET:RECOVERY_CODE_EXPIRED")
	}

	return record, nil
}

/*
ConsumeRecovery redeems a recovery code, setting the account's new password.

Parameters:
  - ctx: context.Context
  - code: The recovery code from the mailed link.
  - newPassword: Sanitized replacement password.

Returns:
  - *User: The account with the rotated password.
  - error: NotFound, expiry/reuse violations, hashing or storage failures.
*/
func (service *Service) ConsumeRecovery(ctx context.Context, code, newPassword string) (*User, error) {
	record, err := service.recoveryRepository.GetByCode(ctx, code)
	if err != nil {
		if apperr.IsNotFoundError(err) {
			return nil, service.recoveryNotFound()
		}
		return nil, err
	}

	if record.Used || record.Expired(time.Now().UTC()) {
		return nil, service.recoveryExpired("API:USER:RECOVER:PUT:RECOVERY_CODE_EXPIRED")
	}

	user, err := service.repository.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, err
	}

	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return nil, apperr.Internal(apperr.Opts{
			ErrorLocationCode: "MODELS:USER:PASSWORD_HASHING",
			Cause:             err,
		})
	}

	user.PasswordHash = newHash
	user.UpdatedAt = time.Now().UTC()
	if err := service.repository.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := service.recoveryRepository.MarkUsed(ctx, record.ID); err != nil {
		// The password rotation already happened; a stale code record only
		// allows a second rotation inside the 15-minute window.
		service.logger.Error("recovery_mark_used_failed",
			slog.String("recovery_id", record.ID),
			slog.Any("error", err),
		)
	}

	service.sendNotification(ctx, mail.Message{
		To:      user.Email,
		Subject: "Sua senha FERCEN foi alterada",
		Body: "A senha da sua conta foi redefinida através da recuperação de senha.\n\n" +
			"Caso não reconheça esta ação, contate a administração imediatamente.",
	}, user.ID, "recovery_confirmation_mail_failed")

	return user, nil
}

// # Internal Helpers

func (service *Service) ensureUniqueUsername(ctx context.Context, username string) error {
	_, err := service.repository.GetByUsername(ctx, username)
	if err == nil {
		return apperr.Validation(apperr.Opts{
			Message:           "O username informado já está sendo usado.",
			Action:            "Escolha outro username e tente novamente.",
			ErrorLocationCode: "MODELS:USER:USERNAME_ALREADY_EXISTS",
			Key:               "username",
		})
	}
	if apperr.IsNotFoundError(err) {
		return nil
	}
	return err
}

func (service *Service) ensureUniqueEmail(ctx context.Context, email string) error {
	_, err := service.repository.GetByEmail(ctx, email)
	if err == nil {
		return apperr.Validation(apperr.Opts{
			Message:           "O email informado já está sendo usado.",
			Action:            "Utilize outro email e tente novamente.",
			ErrorLocationCode: "MODELS:USER:EMAIL_ALREADY_EXISTS",
			Key:               "email",
		})
	}
	if apperr.IsNotFoundError(err) {
		return nil
	}
	return err
}

func (service *Service) recoveryNotFound() error {
	return apperr.NotFound(apperr.Opts{
		Message:           "O código de recuperação informado não foi encontrado.",
		Action:            "Solicite uma nova recuperação de senha.",
		ErrorLocationCode: "API:USER:RECOVER:RECOVERY_CODE_NOT_FOUND",
		Key:               "recoveryCode",
	})
}

func (service *Service) recoveryExpired(errorLocationCode string) error {
	return apperr.Validation(apperr.Opts{
		Message:           "O código de recuperação utilizado é inválido ou expirou.",
		Action:            "Solicite uma nova recuperação de senha.",
		ErrorLocationCode: errorLocationCode,
		Key:               "recoveryCode",
	})
}

// sendNotification delivers a notification; failures are logged, never returned.
func (service *Service) sendNotification(ctx context.Context, message mail.Message, userID, failureEvent string) {
	if err := service.mailer.Send(ctx, message); err != nil {
		service.logger.Error(failureEvent,
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

func joinChanges(changes []string) string {
	switch len(changes) {
	case 0:
		return ""
	case 1:
		return changes[0]
	default:
		result := changes[0]
		for _, change := range changes[1 : len(changes)-1] {
			result += ", " + change
		}
		return result + " e " + changes[len(changes)-1]
	}
}
