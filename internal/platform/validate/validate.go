// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

/*
Package validate normalizes and type-checks inbound request payloads against
a declarative per-field schema registry.

# Architecture

Endpoints declare WHICH fields they accept and whether each is required; the
registry owns HOW each field is validated (trimming, case normalization,
patterns, numeric bounds). The two concerns never mix: a handler cannot
weaken a field rule, only choose the field set.

	body, err := validate.Validate(raw, validate.Keys{
		"year":  validate.Required,
		"month": validate.Required,
		"items": validate.Optional,
	})

Unknown keys are stripped from the sanitized output, never reported as
errors. The first violated rule surfaces as an [apperr.AppError] carrying
the offending field name in Key and the violated rule tag in Type.

Validation is a pure function over its inputs plus the static registry — no
I/O, safe for concurrent use.
*/
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/fercen/fercen/internal/platform/apperr"
)

// Requirement states whether a declared field must be present.
type Requirement string

const (
	Required Requirement = "required"
	Optional Requirement = "optional"
)

// Keys maps field names to their requiredness for one endpoint.
type Keys map[string]Requirement

// violation is a single failed rule, surfaced as the validation error.
type violation struct {
	// field overrides the registry field name in the error Key (used by
	// nested and array element failures, e.g. "peakConsumption.kWh").
	field   string
	ruleTag string
	message string
}

// fieldRule sanitizes and checks one registered field. It receives the
// round-tripped value and returns the sanitized replacement.
type fieldRule func(field string, value any) (any, *violation)

/*
Validate checks object against the requested keys and returns the sanitized
result.

Description: The input is first round-tripped through JSON to obtain a
detached plain-data clone (non-serializable input fails loudly). Each
requested key is then validated by its registry rule in registry order, so
the "first violated rule" is deterministic. Keys absent from the request
spec are stripped from the output.

Parameters:
  - object: Arbitrary decoded payload (typically map[string]any from the body).
  - keys: Field names to validate, each Required or Optional.

Returns:
  - map[string]any: Sanitized object containing only spec'd keys.
  - error: apperr.Validation describing the first violated rule.
*/
func Validate(object any, keys Keys) (map[string]any, error) {
	cloned, err := roundTrip(object)
	if err != nil {
		return nil, err
	}

	if len(cloned) == 0 {
		return nil, schemaError("object", violation{
			ruleTag: "object.min",
			message: "O Body enviado deve ter no mínimo uma chave.",
		})
	}

	sanitized := make(map[string]any, len(keys))

	// Registry order keeps the first-violation contract deterministic even
	// though Keys is a map.
	for _, field := range registryOrder {
		requirement, requested := keys[field]
		if !requested {
			continue
		}

		value, present := cloned[field]
		if !present {
			if requirement == Required {
				return nil, schemaError(field, violation{
					ruleTag: "any.required",
					message: fmt.Sprintf("O campo '%s' é obrigatório.", field),
				})
			}
			continue
		}

		rule := registry[field]
		sanitizedValue, failed := rule(field, value)
		if failed != nil {
			return nil, schemaError(field, *failed)
		}
		sanitized[field] = sanitizedValue
	}

	// A requested key missing from the registry is a programming error in
	// the endpoint, not a client fault.
	for field := range keys {
		if _, known := registry[field]; !known {
			return nil, apperr.Internal(apperr.Opts{
				Message:           fmt.Sprintf("O campo '%s' não possui um esquema de validação.", field),
				ErrorLocationCode: "MODELS:VALIDATOR:UNKNOWN_KEY",
				Key:               field,
			})
		}
	}

	return sanitized, nil
}

/*
Decode validates object against keys and unmarshals the sanitized result
into the caller's expected shape.

Parameters:
  - object: Arbitrary decoded payload.
  - keys: Field names to validate.

Returns:
  - T: Typed sanitized payload.
  - error: Validation failure or an internal decoding error.
*/
func Decode[T any](object any, keys Keys) (T, error) {
	var target T

	sanitized, err := Validate(object, keys)
	if err != nil {
		return target, err
	}

	encoded, err := json.Marshal(sanitized)
	if err != nil {
		return target, apperr.Internal(apperr.Opts{
			Message:           "Não foi possível codificar o objeto validado.",
			ErrorLocationCode: "MODELS:VALIDATOR:ENCODING",
			Cause:             err,
		})
	}

	if err := json.Unmarshal(encoded, &target); err != nil {
		return target, apperr.Internal(apperr.Opts{
			Message:           "Não foi possível decodificar o objeto validado.",
			ErrorLocationCode: "MODELS:VALIDATOR:DECODING",
			Cause:             err,
		})
	}

	return target, nil
}

// roundTrip detaches the input from the caller by serializing and
// deserializing it, guaranteeing plain JSON data downstream.
func roundTrip(object any) (map[string]any, error) {
	encoded, err := json.Marshal(object)
	if err != nil {
		return nil, apperr.Validation(apperr.Opts{
			Message:           "Não foi possível validar o objeto JSON.",
			Action:            "Tente novamente ou reporte o erro com 'requestId'.",
			ErrorLocationCode: "MODELS:VALIDATOR:JSON_PARSING",
			Cause:             err,
		})
	}

	var cloned map[string]any
	if err := json.Unmarshal(encoded, &cloned); err != nil {
		return nil, schemaError("object", violation{
			ruleTag: "object.base",
			message: "O Body enviado deve ser um objeto.",
		})
	}

	return cloned, nil
}

// schemaError wraps a violation into the canonical validation error shape.
func schemaError(field string, failed violation) error {
	key := failed.field
	if key == "" {
		key = field
	}

	return apperr.Validation(apperr.Opts{
		Message:           failed.message,
		ErrorLocationCode: "MODELS:VALIDATOR:SCHEMA",
		Key:               key,
		Type:              failed.ruleTag,
	})
}
