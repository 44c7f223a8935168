// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package membership

import (
	"context"

	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

type ServiceInterface interface {
	CreateTenant(ctx context.Context, name string, tenantType types.TenantType, ownerID string) (*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	UpdateTenant(ctx context.Context, actorID string, tenant *types.Tenant, paths []string) (*types.Tenant, error)
	DeleteTenant(ctx context.Context, actorID, tenantID string) error
	ListUserTenants(ctx context.Context, userID string) ([]*types.Tenant, error)

	GetRole(ctx context.Context, tenantID, userID string) (roles.Role, error)
	AddMember(ctx context.Context, actorID, tenantID, userID string, role roles.Role) error
	RemoveMember(ctx context.Context, actorID, tenantID, userID string) error
	UpdateRole(ctx context.Context, actorID, tenantID, userID string, role roles.Role) error
	TransferOwnership(ctx context.Context, tenantID, fromUserID, toUserID string) error
	ListMembers(ctx context.Context, tenantID string) ([]*types.Membership, error)
	ManageableMembers(ctx context.Context, tenantID, actorID string) ([]*ManageableMember, error)
}

// StorageInterface is the subset of the storage layer the membership package
// depends on.
type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *types.Tenant, paths []string) error
	DeleteTenant(ctx context.Context, id string) error

	GetRole(ctx context.Context, tenantID, userID string) (roles.Role, error)
	AddMember(ctx context.Context, tenantID, userID string, role roles.Role) (string, error)
	RemoveMember(ctx context.Context, tenantID, userID string) error
	UpdateMemberRole(ctx context.Context, tenantID, userID string, role roles.Role) error
	TransferOwnership(ctx context.Context, tenantID, fromUserID, toUserID string) error
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)
}
