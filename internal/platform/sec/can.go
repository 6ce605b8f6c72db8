// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package sec

import "github.com/fercen/fercen/internal/platform/apperr"

/*
Can enforces that the acting session carries a specific capability.

Description: Flat set-membership authorization check. Success is a nil
return; every failure mode maps to a distinct error class so callers can
tell "not authenticated" (401) apart from "malformed session data" (400)
and "authenticated but lacking" (403).

The function is idempotent and side-effect free. It is safe to call
multiple times per request, once per nested operation.

Parameters:
  - required: The capability the protected operation demands.
  - session: The acting session, or nil when the loader produced none.

Returns:
  - error: nil when authorized, otherwise Unauthorized, Validation, or Forbidden.
*/
func Can(required Permission, session *Session) error {

	// No session, or an anonymous one: the caller is not authenticated.
	// Anonymous sessions still hold the self-service capabilities, so the
	// membership test runs before rejecting.
	if session == nil || session.IsAnonymous() {
		if session != nil && session.Has(required) {
			return nil
		}
		return apperr.Unauthorized(apperr.Opts{
			ErrorLocationCode: "MIDDLEWARES:CAN:VALIDATION:UNAUTHORIZED",
		})
	}

	// A user session without permissions is corrupted data, not a simple
	// authorization failure.
	if len(session.Permissions) == 0 {
		return apperr.Validation(apperr.Opts{
			Message:           "O usuário não tem o campo 'permissions' ou está nulo.",
			Action:            "Reporte o erro utilizando o 'requestId'.",
			ErrorLocationCode: "MIDDLEWARES:CAN:PERMISSION:NULL_OR_EMPTY",
		})
	}

	// Every permission attached to the session must exist in the canonical
	// set. The first invalid entry fails with the offending value in Key so
	// operators can trace corrupted session data.
	for _, permission := range session.Permissions {
		if !permission.Valid() {
			return apperr.Validation(apperr.Opts{
				Message:           "Uma das permissões do usuário é inválida.",
				Action:            "Reporte o erro utilizando o 'requestId' e a permissão inválida do campo 'key'.",
				ErrorLocationCode: "MIDDLEWARES:CAN:PERMISSION:INVALID",
				Key:               string(permission),
			})
		}
	}

	if !session.Has(required) {
		return apperr.Forbidden(apperr.Opts{
			ErrorLocationCode: "MIDDLEWARES:CAN:FORBIDDEN",
		})
	}

	return nil
}
