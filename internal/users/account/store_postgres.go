// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package account

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fercen/fercen/internal/platform/dberr"
	"github.com/fercen/fercen/internal/platform/sec"
	"github.com/fercen/fercen/pkg/slice"
)

// # User Repository

// PostgresRepository implements [Repository] using pgx.
//
// Permissions are stored as a text[] column; provider links as JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `
	id, username, email, fullname, permissions, password_hash,
	google_provider, microsoft_provider, created_at, updated_at`

// Create persists a new user record.
func (repository *PostgresRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, username, email, fullname, permissions, password_hash,
			google_provider, microsoft_provider, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := repository.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.Fullname,
		permissionTags(user.Permissions), user.PasswordHash,
		user.GoogleProvider, user.MicrosoftProvider,
		user.CreatedAt, user.UpdatedAt,
	)
	return dberr.Wrap(err, "STORE:USERS:CREATE")
}

// GetByID returns one user by internal ID.
func (repository *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return repository.scanOne(ctx, query, "STORE:USERS:GET_BY_ID", id)
}

// GetByUsername returns one user by its (lowercased) username.
func (repository *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return repository.scanOne(ctx, query, "STORE:USERS:GET_BY_USERNAME", username)
}

// GetByEmail returns one user by its (lowercased) email.
func (repository *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return repository.scanOne(ctx, query, "STORE:USERS:GET_BY_EMAIL", email)
}

// List returns every user, oldest registration first.
func (repository *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "STORE:USERS:LIST")
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user := &User{}
		var tags []string
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.Fullname,
			&tags, &user.PasswordHash,
			&user.GoogleProvider, &user.MicrosoftProvider,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "STORE:USERS:LIST:SCAN")
		}
		user.Permissions = permissionValues(tags)
		users = append(users, user)
	}

	return users, dberr.Wrap(rows.Err(), "STORE:USERS:LIST:ROWS")
}

// Update persists changed user fields.
func (repository *PostgresRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users
		SET username = $2, email = $3, fullname = $4, permissions = $5,
		    password_hash = $6, google_provider = $7, microsoft_provider = $8,
		    updated_at = $9
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.Fullname,
		permissionTags(user.Permissions), user.PasswordHash,
		user.GoogleProvider, user.MicrosoftProvider, user.UpdatedAt,
	)
	return dberr.Wrap(err, "STORE:USERS:UPDATE")
}

func (repository *PostgresRepository) scanOne(ctx context.Context, query, locationCode string, argument any) (*User, error) {
	user := &User{}
	var tags []string

	err := repository.pool.QueryRow(ctx, query, argument).Scan(
		&user.ID, &user.Username, &user.Email, &user.Fullname,
		&tags, &user.PasswordHash,
		&user.GoogleProvider, &user.MicrosoftProvider,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, locationCode)
	}

	user.Permissions = permissionValues(tags)
	return user, nil
}

// permissionTags converts typed permissions into the stored text[] form.
func permissionTags(permissions []sec.Permission) []string {
	return slice.Map(permissions, func(permission sec.Permission) string {
		return string(permission)
	})
}

// permissionValues converts stored tags back into typed permissions.
func permissionValues(tags []string) []sec.Permission {
	return slice.Map(tags, func(tag string) sec.Permission {
		return sec.Permission(tag)
	})
}

// # Recovery Code Repository

// PostgresRecoveryRepository implements [RecoveryRepository] using pgx.
type PostgresRecoveryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRecoveryRepository creates a new PostgreSQL implementation of
// [RecoveryRepository].
func NewPostgresRecoveryRepository(pool *pgxpool.Pool) *PostgresRecoveryRepository {
	return &PostgresRecoveryRepository{pool: pool}
}

// Create persists a freshly issued recovery code.
func (repository *PostgresRecoveryRepository) Create(ctx context.Context, code *RecoveryCode) error {
	const query = `
		INSERT INTO recovery_codes (
			id, code, user_id, used, used_at, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := repository.pool.Exec(ctx, query,
		code.ID, code.Code, code.UserID,
		code.Used, code.UsedAt, code.ExpiresAt, code.CreatedAt,
	)
	return dberr.Wrap(err, "STORE:RECOVERY_CODES:CREATE")
}

// GetByCode returns the recovery record for a code value.
func (repository *PostgresRecoveryRepository) GetByCode(ctx context.Context, codeValue string) (*RecoveryCode, error) {
	const query = `
		SELECT id, code, user_id, used, used_at, expires_at, created_at
		FROM recovery_codes
		WHERE code = $1`

	record := &RecoveryCode{}
	err := repository.pool.QueryRow(ctx, query, codeValue).Scan(
		&record.ID, &record.Code, &record.UserID,
		&record.Used, &record.UsedAt, &record.ExpiresAt, &record.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "STORE:RECOVERY_CODES:GET_BY_CODE")
	}
	return record, nil
}

// MarkUsed flips the used flag and stamps usedAt.
func (repository *PostgresRecoveryRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
		UPDATE recovery_codes
		SET used = TRUE, used_at = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, id, time.Now().UTC())
	return dberr.Wrap(err, "STORE:RECOVERY_CODES:MARK_USED")
}
