// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fercen/fercen/internal/platform/middleware"
	"github.com/fercen/fercen/internal/platform/request"
	"github.com/fercen/fercen/internal/platform/respond"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/platform/validate"
)

// # HTTP Layer

// Handler implements the user account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterCollectionRoutes mounts the /users collection routes.
func (handler *Handler) RegisterCollectionRoutes(router chi.Router) {
	router.With(middleware.RequirePermission(sec.PermissionCreateUser)).Post("/", handler.create)
	router.With(middleware.RequirePermission(sec.PermissionReadUserList)).Get("/", handler.list)
}

// RegisterSelfRoutes mounts the /user self-service routes.
//
// The recovery endpoints carry no permission gate on purpose: a person who
// lost their password has no session to authorize with.
func (handler *Handler) RegisterSelfRoutes(router chi.Router) {
	router.With(middleware.RequirePermission(sec.PermissionReadUser)).Get("/", handler.readSelf)
	router.With(middleware.RequirePermission(sec.PermissionUpdateUser)).Put("/", handler.updateSelf)
	router.With(middleware.RequirePermission(sec.PermissionUpdateUserOther)).Patch("/", handler.updateOther)

	router.Route("/recover", func(recovery chi.Router) {
		recovery.Post("/", handler.requestRecovery)
		recovery.Get("/", handler.verifyRecovery)
		recovery.Put("/", handler.consumeRecovery)
	})
}

func (handler *Handler) create(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	input, err := validate.Decode[CreateInput](body, validate.Keys{
		"username": validate.Required,
		"email":    validate.Required,
		"password": validate.Required,
		"invite":   validate.Required,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	created, err := handler.service.Create(req.Context(), input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, created)
}

func (handler *Handler) list(writer http.ResponseWriter, req *http.Request) {
	users, err := handler.service.List(req.Context())
	if err != nil {
		respond.Error(writer, req, err)
		return
	}
	respond.OK(writer, users)
}

func (handler *Handler) readSelf(writer http.ResponseWriter, req *http.Request) {
	session := request.Session(req)

	user, err := handler.service.GetByID(req.Context(), session.UserID)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) updateSelf(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	input, err := validate.Decode[UpdateSelfInput](body, validate.Keys{
		"fullname":    validate.Optional,
		"email":       validate.Optional,
		"newPassword": validate.Optional,
		"password":    validate.Required,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	session := request.Session(req)
	updated, err := handler.service.UpdateSelf(req.Context(), session.UserID, input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, updated)
}

func (handler *Handler) updateOther(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	input, err := validate.Decode[UpdateOtherInput](body, validate.Keys{
		"id":          validate.Required,
		"fullname":    validate.Optional,
		"email":       validate.Optional,
		"permissions": validate.Optional,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	updated, err := handler.service.UpdateOther(req.Context(), input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, updated)
}

// # Password Recovery Endpoints

func (handler *Handler) requestRecovery(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	lookup, err := validate.Decode[RecoveryLookup](body, validate.Keys{
		"username": validate.Optional,
		"email":    validate.Optional,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	record, err := handler.service.RequestRecovery(req.Context(), lookup)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, record)
}

func (handler *Handler) verifyRecovery(writer http.ResponseWriter, req *http.Request) {
	sanitized, err := validate.Validate(map[string]any{
		"recoveryCode": req.URL.Query().Get("recoveryCode"),
	}, validate.Keys{
		"recoveryCode": validate.Required,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	record, err := handler.service.VerifyRecovery(req.Context(), sanitized["recoveryCode"].(string))
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, record)
}

func (handler *Handler) consumeRecovery(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	sanitized, err := validate.Validate(body, validate.Keys{
		"recoveryCode": validate.Required,
		"newPassword":  validate.Required,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	updated, err := handler.service.ConsumeRecovery(
		req.Context(),
		sanitized["recoveryCode"].(string),
		sanitized["newPassword"].(string),
	)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, updated)
}
