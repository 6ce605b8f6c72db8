// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package invite

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

// Service orchestrates the invitation lifecycle.
type Service struct {
	repository Repository
	mailer     mail.Mailer
	baseURL    string
	logger     *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repository Repository, mailer mail.Mailer, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		mailer:     mailer,
		baseURL:    baseURL,
		logger:     logger,
	}
}

/*
Create issues a new invitation for the target email and mails the link.

Description: At most one invite may exist per email. An already-consumed
invite means the person registered and must not be re-invited through this
flow; a pending one must be deleted first. Both cases fail with distinct
location codes so the panel can guide the administrator.

Parameters:
  - ctx: context.Context
  - targetEmail: Sanitized (validator-lowercased) recipient address.
  - issuedBy: The acting administrator's session.

Returns:
  - *Invite: The created invitation.
  - error: Duplicate policy violations or storage failures.
*/
func (service *Service) Create(ctx context.Context, targetEmail string, issuedBy *sec.Session) (*Invite, error) {
	existing, err := service.repository.GetByTargetEmail(ctx, targetEmail)
	if err == nil && existing != nil {
		if existing.Used {
			return nil, apperr.Validation(apperr.Opts{
				Message:           "O convite enviado para este email já foi utilizado.",
				Action:            "Verifique se o usuário já possui uma conta cadastrada.",
				ErrorLocationCode: "API:INVITES:POST:INVITE_USED",
				Key:               "email",
			})
		}
		return nil, apperr.Validation(apperr.Opts{
			Message:           "Já existe um convite pendente para este email.",
			Action:            "Aguarde o convite ser utilizado ou remova-o antes de enviar outro.",
			ErrorLocationCode: "API:INVITES:POST:INVITE_EXISTS",
			Key:               "email",
		})
	}
	if err != nil && !apperr.IsNotFoundError(err) {
		return nil, err
	}

	publicID, err := sec.GenerateCode(constants.InviteCodeLength)
	if err != nil {
		return nil, apperr.Internal(apperr.Opts{
			ErrorLocationCode: "API:INVITES:POST:CODE_GENERATION",
			Cause:             err,
		})
	}

	currentTime := time.Now().UTC()
	created := &Invite{
		ID:             uuid.NewString(),
		PublicID:       publicID,
		TargetEmail:    targetEmail,
		InvitedByID:    issuedBy.UserID,
		InvitedByEmail: issuedBy.Email,
		CreatedAt:      currentTime,
		UpdatedAt:      currentTime,
	}

	if err := service.repository.Create(ctx, created); err != nil {
		return nil, err
	}

	// A failed mail never rolls back the invite: the code is visible in the
	// panel list and can be forwarded manually.
	message := mail.Message{
		To:      targetEmail,
		Subject: "Você foi convidado para o FERCEN",
		Body: fmt.Sprintf(
			"Você recebeu um convite para criar uma conta no FERCEN.\n\n"+
				"Acesse o link abaixo para se cadastrar:\n%s/cadastro?invite=%s\n\n"+
				"Este convite foi enviado por %s.",
			service.baseURL, created.PublicID, issuedBy.Email,
		),
	}
	if err := service.mailer.Send(ctx, message); err != nil {
		service.logger.Error("invite_mail_failed",
			slog.String("invite_id", created.ID),
			slog.Any("error", err),
		)
	}

	return created, nil
}

// List returns every invitation, newest first.
func (service *Service) List(ctx context.Context) ([]*Invite, error) {
	return service.repository.List(ctx)
}

/*
Delete removes a pending invitation by its public code.

Returns:
  - error: NotFound with API:INVITES:DELETE:INVITE_NOT_FOUND when the code
    does not reference an invite.
*/
func (service *Service) Delete(ctx context.Context, publicID string) error {
	existing, err := service.repository.GetByPublicID(ctx, publicID)
	if err != nil {
		if apperr.IsNotFoundError(err) {
			return apperr.NotFound(apperr.Opts{
				Message:           "O convite informado não foi encontrado.",
				Action:            "Verifique o 'id' enviado e tente novamente.",
				ErrorLocationCode: "API:INVITES:DELETE:INVITE_NOT_FOUND",
				Key:               "id",
			})
		}
		return err
	}

	return service.repository.Delete(ctx, existing.ID)
}

/*
Redeemable returns the invite for a public code when it exists and is still
unused.

Description: Called by the registration flow both before creating the user
and again when marking the invite consumed, so a race between two
registrations with the same code is caught at the second check.

Returns:
  - *Invite: The pending invitation.
  - error: NotFound when absent, Validation when already used.
*/
func (service *Service) Redeemable(ctx context.Context, publicID string) (*Invite, error) {
	existing, err := service.repository.GetByPublicID(ctx, publicID)
	if err != nil {
		if apperr.IsNotFoundError(err) {
			return nil, apperr.NotFound(apperr.Opts{
				Message:           "O convite utilizado não foi encontrado.",
				Action:            "Verifique o código do convite e tente novamente.",
				ErrorLocationCode: "MODELS:INVITES:INVITE_NOT_FOUND",
				Key:               "invite",
			})
		}
		return nil, err
	}

	if existing.Used {
		return nil, apperr.Validation(apperr.Opts{
			Message:           "O convite utilizado já foi usado em outro cadastro.",
			Action:            "Solicite um novo convite ao administrador.",
			ErrorLocationCode: "MODELS:INVITES:INVITE_ALREADY_USED",
			Key:               "invite",
		})
	}

	return existing, nil
}

// Consume marks a pending invite as used.
func (service *Service) Consume(ctx context.Context, id string) error {
	return service.repository.MarkUsed(ctx, id)
}
