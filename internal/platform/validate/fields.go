// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// # Field Registry
//
// One entry per field the API accepts anywhere. Endpoints compose their
// schema by naming fields; the rules below are the single source of truth
// for each field's policy.

// registryOrder fixes the evaluation order so the first violated rule is
// deterministic regardless of the Keys map iteration order.
var registryOrder = []string{
	"id",
	"fullname",
	"username",
	"email",
	"password",
	"newPassword",
	"invite",
	"recoveryCode",
	"code",
	"permissions",
	"year",
	"month",
	"peakConsumption",
	"offpeakConsumption",
	"totalPrice",
	"items",
}

var registry = map[string]fieldRule{
	"id":          stringRule(stringOpts{guid: true}),
	"fullname":    stringRule(stringOpts{pattern: namePattern, patternMessage: nameMessage, minLen: 5, maxLen: 50}),
	"username":    stringRule(stringOpts{lower: true, alnum: true, minLen: 3, maxLen: 30}),
	"email":       stringRule(stringOpts{lower: true, email: true, minLen: 7, maxLen: 254}),
	"password":    stringRule(stringOpts{minLen: 8, maxLen: 72}),
	"newPassword": stringRule(stringOpts{minLen: 8, maxLen: 72}),
	"invite":      stringRule(stringOpts{pattern: codePattern, patternMessage: codeMessage, minLen: 7, maxLen: 7}),
	"recoveryCode": stringRule(stringOpts{
		pattern: codePattern, patternMessage: codeMessage, minLen: 8, maxLen: 8,
	}),
	"code": stringRule(stringOpts{
		pattern: tokenPattern, patternMessage: codeMessage, minLen: 20, maxLen: 300,
	}),
	"permissions":        permissionsRule,
	"year":               numberRule(numberOpts{integer: true, min: floatPtr(2000), max: floatPtr(2100)}),
	"month":              numberRule(numberOpts{integer: true, min: floatPtr(0), max: floatPtr(11)}),
	"peakConsumption":    consumptionRule,
	"offpeakConsumption": consumptionRule,
	"totalPrice":         numberRule(numberOpts{min: floatPtr(0)}),
	"items":              itemsRule,
}

// # Patterns

const (
	nameMessage = "deve ter apenas letras ou caracteres para nomes."
	codeMessage = "deve ter apenas letras, números e alguns símbolos especiais."
)

var (
	// namePattern admits letters (including Latin accents), rejecting
	// digits and most punctuation. Unanchored, matching the policy for
	// human names used across the panel.
	namePattern = regexp.MustCompile(`^[a-zA-Z\x{00C0}-\x{017F}´\s][^_,;:/|\\*&¨%$#@!(){\[}\]=+<>\d]*$`)

	// codePattern is the alphabet of generated public IDs (base64url).
	codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// tokenPattern admits opaque provider tokens.
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9.,/#!?$%^&*;:{}=\-_'"~()]+$`)

	alnumPattern = regexp.MustCompile(`^[a-z0-9]+$`)

	// permissionPattern is intentionally loose; canonical set membership is
	// the access guard's job, not the validator's.
	permissionPattern = regexp.MustCompile(`^[a-z:]+$`)
)

func floatPtr(v float64) *float64 { return &v }

// # String Fields

type stringOpts struct {
	lower          bool
	minLen         int
	maxLen         int
	alnum          bool
	email          bool
	guid           bool
	pattern        *regexp.Regexp
	patternMessage string
}

func stringRule(opts stringOpts) fieldRule {
	return func(field string, value any) (any, *violation) {
		sanitized, failed := checkString(field, value, opts)
		if failed != nil {
			return nil, failed
		}
		return sanitized, nil
	}
}

func checkString(field string, value any, opts stringOpts) (string, *violation) {
	if value == nil {
		return "", &violation{
			field:   field,
			ruleTag: "any.invalid",
			message: fmt.Sprintf("O campo '%s' não pode ser nulo.", field),
		}
	}

	raw, ok := value.(string)
	if !ok {
		return "", &violation{
			field:   field,
			ruleTag: "string.base",
			message: fmt.Sprintf("O campo '%s' deve ser uma string.", field),
		}
	}

	sanitized := strings.TrimSpace(raw)
	if opts.lower {
		sanitized = strings.ToLower(sanitized)
	}

	if sanitized == "" {
		return "", &violation{
			field:   field,
			ruleTag: "string.empty",
			message: fmt.Sprintf("O campo '%s' não pode estar em branco.", field),
		}
	}

	if opts.alnum && !alnumPattern.MatchString(sanitized) {
		return "", &violation{
			field:   field,
			ruleTag: "string.alphanum",
			message: fmt.Sprintf("O campo '%s' deve conter apenas caracteres alfanuméricos.", field),
		}
	}

	if opts.email {
		if _, err := mail.ParseAddress(sanitized); err != nil {
			return "", &violation{
				field:   field,
				ruleTag: "string.email",
				message: fmt.Sprintf("O campo '%s' deve ser um email válido.", field),
			}
		}
	}

	if opts.guid {
		parsed, err := uuid.Parse(sanitized)
		if err != nil || parsed.Version() != 4 {
			return "", &violation{
				field:   field,
				ruleTag: "string.guid",
				message: fmt.Sprintf("O campo '%s' deve ser um UUIDv4.", field),
			}
		}
	}

	if opts.pattern != nil && !opts.pattern.MatchString(sanitized) {
		return "", &violation{
			field:   field,
			ruleTag: "string.pattern.base",
			message: fmt.Sprintf("O campo '%s' %s", field, opts.patternMessage),
		}
	}

	length := utf8.RuneCountInString(sanitized)
	if opts.minLen > 0 && length < opts.minLen {
		return "", &violation{
			field:   field,
			ruleTag: "string.min",
			message: fmt.Sprintf("O campo '%s' deve ter, no mínimo, %d caracteres.", field, opts.minLen),
		}
	}
	if opts.maxLen > 0 && length > opts.maxLen {
		return "", &violation{
			field:   field,
			ruleTag: "string.max",
			message: fmt.Sprintf("O campo '%s' deve ter, no máximo, %d caracteres.", field, opts.maxLen),
		}
	}

	return sanitized, nil
}

// # Numeric Fields

type numberOpts struct {
	integer bool
	min     *float64
	max     *float64
}

func numberRule(opts numberOpts) fieldRule {
	return func(field string, value any) (any, *violation) {
		return checkNumber(field, value, opts)
	}
}

func checkNumber(field string, value any, opts numberOpts) (any, *violation) {
	// encoding/json decodes every JSON number into float64.
	number, ok := value.(float64)
	if !ok {
		return nil, &violation{
			field:   field,
			ruleTag: "number.base",
			message: fmt.Sprintf("O campo '%s' deve ser um número.", field),
		}
	}

	if opts.integer && number != math.Trunc(number) {
		return nil, &violation{
			field:   field,
			ruleTag: "number.integer",
			message: fmt.Sprintf("O campo '%s' deve ser um número inteiro.", field),
		}
	}

	if opts.min != nil && number < *opts.min {
		return nil, &violation{
			field:   field,
			ruleTag: "number.min",
			message: fmt.Sprintf("O campo '%s' não pode ser menor que %v.", field, *opts.min),
		}
	}
	if opts.max != nil && number > *opts.max {
		return nil, &violation{
			field:   field,
			ruleTag: "number.max",
			message: fmt.Sprintf("O campo '%s' não pode ser maior que %v.", field, *opts.max),
		}
	}

	if opts.integer {
		return int(number), nil
	}
	return number, nil
}

// # Permission Arrays

// permissionsRule validates an array of permission tags. Duplicates are a
// hard failure, never silently de-duplicated: a duplicated entry means the
// caller built the list wrong, and masking that invites drift between what
// an admin sees and what was stored.
func permissionsRule(field string, value any) (any, *violation) {
	if value == nil {
		return nil, arrayBase(field)
	}

	rawItems, ok := value.([]any)
	if !ok {
		return nil, arrayBase(field)
	}

	sanitized := make([]string, 0, len(rawItems))
	seen := make(map[string]bool, len(rawItems))

	for _, rawItem := range rawItems {
		item, failed := checkString(field, rawItem, stringOpts{
			lower:          true,
			minLen:         1,
			maxLen:         30,
			pattern:        permissionPattern,
			patternMessage: "deve ter apenas letras e dois pontos.",
		})
		if failed != nil {
			return nil, failed
		}

		if seen[item] {
			return nil, &violation{
				field:   field,
				ruleTag: "array.unique",
				message: fmt.Sprintf("O campo '%s' deve ter apenas valores únicos.", field),
			}
		}
		seen[item] = true
		sanitized = append(sanitized, item)
	}

	return sanitized, nil
}

// # Consumption Blocks

// consumptionKeys is the exact shape of a consumption block. The key count
// is pinned (min == max == 3) so a partially filled block is rejected
// rather than defaulted.
var consumptionKeys = []string{"kWh", "unitPrice", "total"}

func consumptionRule(field string, value any) (any, *violation) {
	block, ok := value.(map[string]any)
	if value == nil || !ok {
		return nil, &violation{
			field:   field,
			ruleTag: "object.base",
			message: fmt.Sprintf("O campo '%s' deve ser um objeto.", field),
		}
	}

	sanitized := make(map[string]any, len(consumptionKeys))

	for _, key := range consumptionKeys {
		raw, present := block[key]
		if !present {
			return nil, &violation{
				field:   field,
				ruleTag: "object.min",
				message: fmt.Sprintf("O campo '%s' deve ter, no mínimo, %d chaves.", field, len(consumptionKeys)),
			}
		}

		number, failed := checkNumber(key, raw, numberOpts{min: floatPtr(0)})
		if failed != nil {
			return nil, failed
		}
		sanitized[key] = number
	}

	// Unknown keys inside the block are stripped by not copying them.
	return sanitized, nil
}

// # Billed Item Arrays

// itemsRule validates the billed line items of an electricity bill. Each
// element carries exactly a label and a cost; duplicate elements are a
// hard failure.
func itemsRule(field string, value any) (any, *violation) {
	if value == nil {
		return nil, arrayBase(field)
	}

	rawItems, ok := value.([]any)
	if !ok {
		return nil, arrayBase(field)
	}

	sanitized := make([]map[string]any, 0, len(rawItems))
	seen := make(map[string]bool, len(rawItems))

	for _, rawItem := range rawItems {
		entry, ok := rawItem.(map[string]any)
		if rawItem == nil || !ok {
			return nil, &violation{
				field:   field,
				ruleTag: "object.base",
				message: fmt.Sprintf("O campo '%s' deve ser um objeto.", field),
			}
		}

		rawLabel, hasLabel := entry["label"]
		if !hasLabel {
			return nil, &violation{
				field:   "label",
				ruleTag: "any.required",
				message: "O campo 'label' é obrigatório.",
			}
		}
		label, failed := checkString("label", rawLabel, stringOpts{
			pattern:        namePattern,
			patternMessage: nameMessage,
			maxLen:         70,
		})
		if failed != nil {
			return nil, failed
		}

		rawCost, hasCost := entry["cost"]
		if !hasCost {
			return nil, &violation{
				field:   "cost",
				ruleTag: "any.required",
				message: "O campo 'cost' é obrigatório.",
			}
		}
		cost, failed := checkNumber("cost", rawCost, numberOpts{})
		if failed != nil {
			return nil, failed
		}

		// Unknown keys inside each item are stripped by rebuilding it.
		item := map[string]any{"label": label, "cost": cost}

		fingerprint, err := json.Marshal(item)
		if err == nil {
			if seen[string(fingerprint)] {
				return nil, &violation{
					field:   field,
					ruleTag: "array.unique",
					message: fmt.Sprintf("O campo '%s' deve ter apenas valores únicos.", field),
				}
			}
			seen[string(fingerprint)] = true
		}

		sanitized = append(sanitized, item)
	}

	return sanitized, nil
}

func arrayBase(field string) *violation {
	return &violation{
		field:   field,
		ruleTag: "array.base",
		message: fmt.Sprintf("O campo '%s' deve ser uma lista.", field),
	}
}
