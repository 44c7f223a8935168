// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"

	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

// StorageInterface is the subset of the storage layer the webhooks package
// depends on.
type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	AddMember(ctx context.Context, tenantID, userID string, role roles.Role) (string, error)
}

// SessionCreatorInterface is implemented by the sessions service. The login
// hook records the session row the API middleware validates tokens against.
type SessionCreatorInterface interface {
	Create(ctx context.Context, userID, token, deviceInfo string) (*types.Session, error)
}

// ServiceInterface defines the identity-provider hook operations.
type ServiceInterface interface {
	HandleRegistration(ctx context.Context, identityID, email string) (*types.Tenant, error)
	HandleLogin(ctx context.Context, identityID, sessionToken, deviceInfo string) (*types.Session, error)
}
