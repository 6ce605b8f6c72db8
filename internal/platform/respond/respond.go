// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Success responses are written as plain JSON payloads; error responses
// always follow the flat FERCEN error envelope (message, action, statusCode,
// errorLocationCode, key, type, requestId) so the administrative frontend
// can render any failure with a single component.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fercen/fercen/internal/platform/apperr"
	"github.com/fercen/fercen/internal/platform/ctxutil"
)

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with the given payload.
func OK(writer http.ResponseWriter, payload interface{}) {
	JSON(writer, http.StatusOK, payload)
}

// Created writes a 201 Created response with the given payload.
func Created(writer http.ResponseWriter, payload interface{}) {
	JSON(writer, http.StatusCreated, payload)
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into the standardized FERCEN error envelope.
//
// Unexpected (non-AppError) failures are wrapped as a generic 500 so internal
// details never leak to the client. The request's correlation ID always wins
// over the one minted at error construction time, keeping the envelope
// traceable back to the access log line.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(apperr.Opts{Cause: err})
	}

	if requestID := ctxutil.GetRequestID(request.Context()); requestID != "" {
		appError.RequestID = requestID
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.StatusCode >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("error_location_code", appError.ErrorLocationCode),
			slog.String("request_id", appError.RequestID),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.StatusCode, appError)
}
