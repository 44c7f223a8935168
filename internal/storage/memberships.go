// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

// GetRole returns the member's role in the tenant, or RoleNone when no
// membership exists. Absence is not an error.
func (s *Storage) GetRole(ctx context.Context, tenantID, userID string) (roles.Role, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetRole")
	defer span.End()

	var role roles.Role
	err := s.db.Statement(ctx).
		Select("role").
		From("memberships").
		Where(sq.Eq{"tenant_id": tenantID, "user_id": userID}).
		QueryRowContext(ctx).
		Scan(&role)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return roles.RoleNone, nil
		}
		return roles.RoleNone, fmt.Errorf("failed to get role: %w", err)
	}

	return role, nil
}

func (s *Storage) AddMember(ctx context.Context, tenantID, userID string, role roles.Role) (string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AddMember")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate membership ID: %w", err)
	}

	_, err = s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "tenant_id", "user_id", "role").
		Values(id.String(), tenantID, userID, role).
		ExecContext(ctx)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return "", ErrDuplicateKey
		}
		if IsForeignKeyViolation(err) {
			return "", ErrForeignKeyViolation
		}
		return "", fmt.Errorf("failed to add member: %w", err)
	}

	return id.String(), nil
}

func (s *Storage) RemoveMember(ctx context.Context, tenantID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.RemoveMember")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("memberships").
		Where(sq.Eq{"tenant_id": tenantID, "user_id": userID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
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

func (s *Storage) UpdateMemberRole(ctx context.Context, tenantID, userID string, role roles.Role) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateMemberRole")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("memberships").
		Set("role", role).
		Where(sq.Eq{"tenant_id": tenantID, "user_id": userID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", mapConstraintError(err))
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

// TransferOwnership demotes the current owner to admin and promotes the new
// owner in one transaction. Both rows are locked first so a concurrent reader
// never observes zero or two owners, and either both writes land or neither.
func (s *Storage) TransferOwnership(ctx context.Context, tenantID, fromUserID, toUserID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.TransferOwnership")
	defer span.End()

	return s.db.WithTx(ctx, func(txCtx context.Context) error {
		var fromRole roles.Role
		err := s.db.Statement(txCtx).
			Select("role").
			From("memberships").
			Where(sq.Eq{"tenant_id": tenantID, "user_id": fromUserID}).
			Suffix("FOR UPDATE").
			QueryRowContext(txCtx).
			Scan(&fromRole)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("current owner: %w", types.ErrNotFound)
			}
			return fmt.Errorf("failed to lock current owner row: %w", err)
		}
		if fromRole != roles.RoleOwner {
			return fmt.Errorf("user %s does not own tenant %s: %w", fromUserID, tenantID, types.ErrPermissionDenied)
		}

		var toRole roles.Role
		err = s.db.Statement(txCtx).
			Select("role").
			From("memberships").
			Where(sq.Eq{"tenant_id": tenantID, "user_id": toUserID}).
			Suffix("FOR UPDATE").
			QueryRowContext(txCtx).
			Scan(&toRole)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("new owner must be an existing member: %w", types.ErrNotFound)
			}
			return fmt.Errorf("failed to lock new owner row: %w", err)
		}
		if toRole == roles.RoleOwner {
			return fmt.Errorf("user %s already owns tenant %s: %w", toUserID, tenantID, types.ErrInvalidRole)
		}

		// Demote before promote, the one-owner-per-tenant index is checked
		// per statement.
		if err := s.updateRoleInTx(txCtx, tenantID, fromUserID, roles.RoleAdmin); err != nil {
			return fmt.Errorf("failed to demote previous owner: %w", err)
		}
		if err := s.updateRoleInTx(txCtx, tenantID, toUserID, roles.RoleOwner); err != nil {
			return fmt.Errorf("failed to promote new owner: %w", err)
		}

		return nil
	})
}

func (s *Storage) updateRoleInTx(ctx context.Context, tenantID, userID string, role roles.Role) error {
	res, err := s.db.Statement(ctx).
		Update("memberships").
		Set("role", role).
		Where(sq.Eq{"tenant_id": tenantID, "user_id": userID}).
		ExecContext(ctx)
	if err != nil {
		return mapConstraintError(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMembersByTenantID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("id", "tenant_id", "user_id", "role", "created_at").
		From("memberships").
		Where(sq.Eq{"tenant_id": tenantID}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*types.Membership
	for rows.Next() {
		var m types.Membership
		if err := rows.Scan(&m.ID, &m.TenantID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}
