// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fercen/fercen/internal/platform/apperr"
)

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate key errors.
const uniqueViolation = "23505"

// IsNotFound reports whether err is the driver's row-absence sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a PostgreSQL duplicate key error.
//
// Services still run their own existence checks first to return the precise
// domain error; this catches the race where two writes pass the check
// concurrently.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == uniqueViolation
}

// Wrap classifies a database error into a meaningful [apperr.AppError],
// hiding internal database details from the client.
//
// The errorLocationCode pinpoints the storage call site for log correlation.
func Wrap(err error, errorLocationCode string) error {
	if err == nil {
		return nil
	}

	if IsNotFound(err) {
		return apperr.NotFound(apperr.Opts{
			ErrorLocationCode: errorLocationCode,
			Cause:             err,
		})
	}

	return apperr.Internal(apperr.Opts{
		ErrorLocationCode: errorLocationCode,
		Cause:             err,
	})
}
