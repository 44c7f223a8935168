// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonical/entitlement-service/internal/types"
)

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	metadata := t.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	rawMetadata, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tenant metadata: %w", err)
	}

	var newTenant types.Tenant
	var rawOut []byte
	err = s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "type", "metadata").
		Values(id.String(), t.Name, t.Type, rawMetadata).
		Suffix("RETURNING id, name, type, metadata, created_at").
		QueryRowContext(ctx).
		Scan(&newTenant.ID, &newTenant.Name, &newTenant.Type, &rawOut, &newTenant.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert tenant: %w", mapConstraintError(err))
	}

	if err := json.Unmarshal(rawOut, &newTenant.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode tenant metadata: %w", err)
	}

	return &newTenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	var t types.Tenant
	var rawMetadata []byte
	err := s.db.Statement(ctx).
		Select("id", "name", "type", "metadata", "created_at").
		From("tenants").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Name, &t.Type, &rawMetadata, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	if err := json.Unmarshal(rawMetadata, &t.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode tenant metadata: %w", err)
	}

	return &t, nil
}

func (s *Storage) ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenantsByUserID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("t.id", "t.name", "t.type", "t.metadata", "t.created_at").
		From("tenants t").
		Join("memberships m ON t.id = m.tenant_id").
		Where(sq.Eq{"m.user_id": userID}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*types.Tenant
	for rows.Next() {
		var t types.Tenant
		var rawMetadata []byte
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &rawMetadata, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		if err := json.Unmarshal(rawMetadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode tenant metadata: %w", err)
		}
		tenants = append(tenants, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tenants, nil
}

// UpdateTenant follows PATCH semantics, updating only the fields named in paths.
func (s *Storage) UpdateTenant(ctx context.Context, tenant *types.Tenant, paths []string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTenant")
	defer span.End()

	updateMap := make(map[string]interface{})
	for _, p := range paths {
		switch p {
		case "name":
			updateMap["name"] = tenant.Name
		case "metadata":
			rawMetadata, err := json.Marshal(tenant.Metadata)
			if err != nil {
				return fmt.Errorf("failed to encode tenant metadata: %w", err)
			}
			updateMap["metadata"] = rawMetadata
		}
	}

	if len(updateMap) == 0 {
		return nil
	}

	res, err := s.db.Statement(ctx).
		Update("tenants").
		SetMap(updateMap).
		Where(sq.Eq{"id": tenant.ID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
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

// DeleteTenant removes a tenant and its dependent rows in strict order:
// invites, coverage links, memberships, then the tenant row, all in one
// transaction. Remaining references (a payer backed by the tenant) surface as
// ErrForeignKeyViolation.
func (s *Storage) DeleteTenant(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteTenant")
	defer span.End()

	return s.db.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.db.Statement(txCtx).
			Delete("invites").
			Where(sq.Eq{"tenant_id": id}).
			ExecContext(txCtx); err != nil {
			return fmt.Errorf("failed to delete tenant invites: %w", mapConstraintError(err))
		}

		if _, err := s.db.Statement(txCtx).
			Delete("subscription_tenant_coverage").
			Where(sq.Eq{"tenant_id": id}).
			ExecContext(txCtx); err != nil {
			return fmt.Errorf("failed to delete tenant coverage: %w", mapConstraintError(err))
		}

		if _, err := s.db.Statement(txCtx).
			Delete("memberships").
			Where(sq.Eq{"tenant_id": id}).
			ExecContext(txCtx); err != nil {
			return fmt.Errorf("failed to delete tenant memberships: %w", mapConstraintError(err))
		}

		res, err := s.db.Statement(txCtx).
			Delete("tenants").
			Where(sq.Eq{"id": id}).
			ExecContext(txCtx)
		if err != nil {
			return fmt.Errorf("failed to delete tenant: %w", mapConstraintError(err))
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}

		return nil
	})
}
