// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package request

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fercen/fercen/internal/platform/apperr"
	"github.com/fercen/fercen/internal/platform/ctxutil"
	"github.com/fercen/fercen/internal/platform/sec"
)

/*
DecodeBody reads the request body as arbitrary JSON.

The result is handed to the validator untyped on purpose: the validator owns
unknown-key stripping and type coercion, so handlers must not pre-shape the
payload with struct tags.

Parameters:
  - request: *http.Request

Returns:
  - any: The decoded body (typically map[string]any).
  - error: apperr.Validation when the body is not parseable JSON.
*/
func DecodeBody(request *http.Request) (any, error) {
	var body any
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		return nil, apperr.Validation(apperr.Opts{
			Message:           "Não foi possível interpretar o valor enviado.",
			Action:            "Verifique se o valor enviado é um JSON válido.",
			ErrorLocationCode: "MODELS:VALIDATOR:JSON_PARSING",
			Cause:             err,
		})
	}
	return body, nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Session extracts the acting session from the request context.

Returns nil when the session loader middleware has not run.
*/
func Session(request *http.Request) *sec.Session {
	return ctxutil.GetSession(request.Context())
}
