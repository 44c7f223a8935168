// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonical/entitlement-service/internal/types"
)

// UpsertInvite creates a pending invite, or refreshes the role, inviter and
// timestamps when one already exists for the (tenant, email) pair.
func (s *Storage) UpsertInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertInvite")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite ID: %w", err)
	}

	var stored types.Invite
	err = s.db.Statement(ctx).
		Insert("invites").
		Columns("id", "tenant_id", "email", "role", "invited_by", "expires_at").
		Values(id.String(), invite.TenantID, invite.Email, invite.Role, invite.InvitedBy, invite.ExpiresAt).
		Suffix(`ON CONFLICT (tenant_id, email) DO UPDATE SET
			role = EXCLUDED.role,
			invited_by = EXCLUDED.invited_by,
			created_at = now(),
			expires_at = EXCLUDED.expires_at
			RETURNING id, tenant_id, email, role, invited_by, created_at, expires_at`).
		QueryRowContext(ctx).
		Scan(&stored.ID, &stored.TenantID, &stored.Email, &stored.Role, &stored.InvitedBy, &stored.CreatedAt, &stored.ExpiresAt)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert invite: %w", mapConstraintError(err))
	}

	return &stored, nil
}

func (s *Storage) GetInviteByID(ctx context.Context, id string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInviteByID")
	defer span.End()

	var invite types.Invite
	err := s.db.Statement(ctx).
		Select("id", "tenant_id", "email", "role", "invited_by", "created_at", "expires_at").
		From("invites").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&invite.ID, &invite.TenantID, &invite.Email, &invite.Role, &invite.InvitedBy, &invite.CreatedAt, &invite.ExpiresAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return &invite, nil
}

// AcceptInvite consumes the invite and creates the membership in one
// transaction. The delete doubles as the idempotency guard: a second accept
// finds no row and returns ErrNotFound. A concurrent registration racing the
// invite is caught by the membership unique constraint, returned as
// ErrDuplicateKey with no invite consumed.
func (s *Storage) AcceptInvite(ctx context.Context, inviteID, userID string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AcceptInvite")
	defer span.End()

	var invite types.Invite
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		err := s.db.Statement(txCtx).
			Delete("invites").
			Where(sq.Eq{"id": inviteID}).
			Suffix("RETURNING id, tenant_id, email, role, invited_by, created_at, expires_at").
			QueryRowContext(txCtx).
			Scan(&invite.ID, &invite.TenantID, &invite.Email, &invite.Role, &invite.InvitedBy, &invite.CreatedAt, &invite.ExpiresAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to consume invite: %w", err)
		}

		membershipID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate membership ID: %w", err)
		}

		_, err = s.db.Statement(txCtx).
			Insert("memberships").
			Columns("id", "tenant_id", "user_id", "role").
			Values(membershipID.String(), invite.TenantID, userID, invite.Role).
			ExecContext(txCtx)
		if err != nil {
			return fmt.Errorf("failed to create membership from invite: %w", mapConstraintError(err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &invite, nil
}

func (s *Storage) DeleteInvite(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteInvite")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("invites").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteExpiredInvites removes invites past their expiry. Safe to run
// concurrently and repeatedly, already-swept rows are a no-op.
func (s *Storage) DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteExpiredInvites")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("invites").
		Where(sq.Lt{"expires_at": now}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows, nil
}
