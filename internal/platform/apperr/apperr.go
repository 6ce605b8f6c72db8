// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package apperr defines the centralized error handling framework for FERCEN.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct carrying an HTTP status, a diagnostic message, and a
    remediation hint ("action") that the frontend can show verbatim.
  - Location codes: Every error constructed at a detection point carries an
    ErrorLocationCode (e.g. "MODELS:VALIDATOR:SCHEMA") so operators can find
    the exact origin without a stack trace.
  - Correlation: A RequestID travels with the error to the client for
    support tickets.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// AppError is the canonical error type for the FERCEN API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Message is a human-readable diagnostic description safe to return to the client.
	Message string `json:"message"`
	// Action is the remediation hint shown to the end user, distinct from Message.
	Action string `json:"action"`
	// StatusCode is the HTTP response status code.
	StatusCode int `json:"statusCode"`
	// ErrorLocationCode identifies the exact detection point (e.g. "MIDDLEWARES:CAN:FORBIDDEN").
	ErrorLocationCode string `json:"errorLocationCode,omitempty"`
	// Key names the offending field or value, when one exists.
	Key string `json:"key,omitempty"`
	// Type is the machine-readable tag of the violated rule (e.g. "string.min").
	Type string `json:"type,omitempty"`
	// RequestID correlates the response with server-side logs.
	RequestID string `json:"requestId"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
}

// Error implements the error interface. It returns the diagnostic message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Opts carries the optional fields accepted by every constructor.
type Opts struct {
	Message           string
	Action            string
	ErrorLocationCode string
	Key               string
	Type              string
	RequestID         string
	Cause             error
}

// # Client Errors (4xx)

// Validation creates a 400 [AppError] for malformed or out-of-policy input.
func Validation(opts Opts) *AppError {
	return build(opts, http.StatusBadRequest,
		"Houve um erro de validação.",
		"Verifique os dados enviados e tente novamente.",
	)
}

// Unauthorized creates a 401 [AppError] for requests lacking an authenticated session.
func Unauthorized(opts Opts) *AppError {
	return build(opts, http.StatusUnauthorized,
		"Usuário não autenticado.",
		"Verifique se está autenticado e tente novamente.",
	)
}

// Forbidden creates a 403 [AppError] for sessions lacking the required capability.
func Forbidden(opts Opts) *AppError {
	return build(opts, http.StatusForbidden,
		"Você não tem permissão para executar esta ação.",
		"Verifique suas permissões e tente novamente.",
	)
}

// NotFound creates a 404 [AppError] for a missing resource.
func NotFound(opts Opts) *AppError {
	return build(opts, http.StatusNotFound,
		"O recurso solicitado não foi encontrado.",
		"Verifique o caminho e o método do pedido e tente novamente.",
	)
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(opts Opts) *AppError {
	return build(opts, http.StatusInternalServerError,
		"Houve um erro inesperado.",
		"Tente novamente ou reporte o erro utilizando o 'requestId'.",
	)
}

// build fills the constructor defaults shared by every error class.
func build(opts Opts, status int, defaultMessage, defaultAction string) *AppError {
	appError := &AppError{
		Message:           opts.Message,
		Action:            opts.Action,
		StatusCode:        status,
		ErrorLocationCode: opts.ErrorLocationCode,
		Key:               opts.Key,
		Type:              opts.Type,
		RequestID:         opts.RequestID,
		Cause:             opts.Cause,
	}

	if appError.Message == "" {
		appError.Message = defaultMessage
	}
	if appError.Action == "" {
		appError.Action = defaultAction
	}
	if appError.RequestID == "" {
		appError.RequestID = uuid.New().String()
	}

	return appError
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsNotFoundError reports whether err carries a 404 status.
func IsNotFoundError(err error) bool {
	ae := As(err)
	return ae != nil && ae.StatusCode == http.StatusNotFound
}
