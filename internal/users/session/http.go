// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fercen/fercen/internal/platform/constants"
	"github.com/fercen/fercen/internal/platform/middleware"
	"github.com/fercen/fercen/internal/platform/request"
	"github.com/fercen/fercen/internal/platform/respond"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/internal/platform/validate"
)

// # HTTP Layer

// Handler implements the session HTTP endpoints.
type Handler struct {
	service       *Service
	secureCookies bool
}

// NewHandler constructs a new [Handler]. secureCookies should be true in
// production so the session cookie only travels over HTTPS.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{service: service, secureCookies: secureCookies}
}

// RegisterRoutes mounts the session routes onto the router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequirePermission(sec.PermissionCreateSession)).Post("/", handler.login)
	router.With(middleware.RequirePermission(sec.PermissionReadSession)).Get("/", handler.read)
	router.With(middleware.RequirePermission(sec.PermissionReadSession)).Delete("/", handler.logout)
}

func (handler *Handler) login(writer http.ResponseWriter, req *http.Request) {
	body, err := request.DecodeBody(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	sanitized, err := validate.Validate(body, validate.Keys{
		"username": validate.Required,
		"password": validate.Required,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	established, token, err := handler.service.Login(
		req.Context(),
		sanitized["username"].(string),
		sanitized["password"].(string),
	)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	http.SetCookie(writer, handler.sessionCookie(token, int(constants.SessionTTL.Seconds())))
	respond.Created(writer, established)
}

func (handler *Handler) read(writer http.ResponseWriter, req *http.Request) {
	respond.OK(writer, request.Session(req))
}

func (handler *Handler) logout(writer http.ResponseWriter, req *http.Request) {
	if err := handler.service.Logout(req.Context(), request.Session(req)); err != nil {
		respond.Error(writer, req, err)
		return
	}

	// Expire the cookie regardless of what the browser does next.
	http.SetCookie(writer, handler.sessionCookie("", -1))
	respond.NoContent(writer)
}

func (handler *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
