// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package invite

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fercen/fercen/internal/platform/middleware"
	"github.com/fercen/fercen/internal/platform/request"
	"github.com/fercen/fercen/internal/platform/respond"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/platform/validate"
)

// Handler implements the invitation HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the invitation routes onto the router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequirePermission(sec.PermissionReadInvite)).Get("/", handler.list)
	router.With(middleware.RequirePermission(sec.PermissionCreateInvite)).Post("/", handler.create)
	router.With(middleware.RequirePermission(sec.PermissionReadInvite)).Delete("/", handler.delete)
}

func (handler *Handler) list(writer http.ResponseWriter, req *http.Request) {
	invites, err := handler.service.List(req.Context())
	if err != nil {
		respond.Error(writer, req, err)
		return
	}
	respond.OK(writer, invites)
}

func (handler *Handler) create(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	sanitized, err := validate.Validate(body, validate.Keys{
		"email": validate.Required,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	created, err := handler.service.Create(req.Context(), sanitized["email"].(string), request.Session(req))
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, created)
}

func (handler *Handler) delete(writer http.ResponseWriter, req *http.Request) {
	// The public code travels as ?id=; it is validated under the invite
	// field rule (7-char URL-safe alphabet).
	sanitized, err := validate.Validate(map[string]any{
		"invite": req.URL.Query().Get("id"),
	}, validate.Keys{
		"invite": validate.Required,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.Delete(req.Context(), sanitized["invite"].(string)); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}
