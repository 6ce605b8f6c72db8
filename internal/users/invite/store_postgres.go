// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package invite

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fercen/fercen/internal/platform/dberr"
)

// # Invite Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const inviteColumns = `
	id, public_id, target_email, invited_by_id, invited_by_email,
	used, used_at, created_at, updated_at`

// Create persists a new invitation record.
func (repository *PostgresRepository) Create(ctx context.Context, invite *Invite) error {
	const query = `
		INSERT INTO invites (
			id, public_id, target_email, invited_by_id, invited_by_email,
			used, used_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := repository.pool.Exec(ctx, query,
		invite.ID, invite.PublicID, invite.TargetEmail,
		invite.InvitedByID, invite.InvitedByEmail,
		invite.Used, invite.UsedAt, invite.CreatedAt, invite.UpdatedAt,
	)
	return dberr.Wrap(err, "STORE:INVITES:CREATE")
}

// List returns every invitation, newest first.
func (repository *PostgresRepository) List(ctx context.Context) ([]*Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM invites
		ORDER BY created_at DESC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "STORE:INVITES:LIST")
	}
	defer rows.Close()

	invites := make([]*Invite, 0)
	for rows.Next() {
		record := &Invite{}
		if err := rows.Scan(
			&record.ID, &record.PublicID, &record.TargetEmail,
			&record.InvitedByID, &record.InvitedByEmail,
			&record.Used, &record.UsedAt, &record.CreatedAt, &record.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "STORE:INVITES:LIST:SCAN")
		}
		invites = append(invites, record)
	}

	return invites, dberr.Wrap(rows.Err(), "STORE:INVITES:LIST:ROWS")
}

// GetByPublicID returns the invite carrying the given public code.
func (repository *PostgresRepository) GetByPublicID(ctx context.Context, publicID string) (*Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE public_id = $1`

	return repository.scanOne(ctx, query, "STORE:INVITES:GET_BY_PUBLIC_ID", publicID)
}

// GetByTargetEmail returns the most recent invite issued to an email.
func (repository *PostgresRepository) GetByTargetEmail(ctx context.Context, email string) (*Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE target_email = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return repository.scanOne(ctx, query, "STORE:INVITES:GET_BY_TARGET_EMAIL", email)
}

// MarkUsed flips the used flag and stamps usedAt.
func (repository *PostgresRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
		UPDATE invites
		SET used = TRUE, used_at = $2, updated_at = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, id, time.Now().UTC())
	return dberr.Wrap(err, "STORE:INVITES:MARK_USED")
}

// Delete removes an invitation by internal ID.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM invites WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, id)
	return dberr.Wrap(err, "STORE:INVITES:DELETE")
}

func (repository *PostgresRepository) scanOne(ctx context.Context, query, locationCode string, argument any) (*Invite, error) {
	record := &Invite{}
	err := repository.pool.QueryRow(ctx, query, argument).Scan(
		&record.ID, &record.PublicID, &record.TargetEmail,
		&record.InvitedByID, &record.InvitedByEmail,
		&record.Used, &record.UsedAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, locationCode)
	}
	return record, nil
}
