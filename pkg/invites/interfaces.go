// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

import (
	"context"
	"time"

	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

type ServiceInterface interface {
	Invite(ctx context.Context, actorID, tenantID, email string, role roles.Role) (*InviteResult, error)
	GetInvite(ctx context.Context, inviteID string) (*types.Invite, error)
	Accept(ctx context.Context, inviteID, userID string) (*types.Invite, error)
	Decline(ctx context.Context, inviteID, userID string) error
	Revoke(ctx context.Context, actorID, inviteID string) error
	SweepExpired(ctx context.Context) (int64, error)
}

// StorageInterface is the subset of the storage layer the invites package
// depends on.
type StorageInterface interface {
	GetRole(ctx context.Context, tenantID, userID string) (roles.Role, error)
	AddMember(ctx context.Context, tenantID, userID string, role roles.Role) (string, error)

	UpsertInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error)
	GetInviteByID(ctx context.Context, id string) (*types.Invite, error)
	AcceptInvite(ctx context.Context, inviteID, userID string) (*types.Invite, error)
	DeleteInvite(ctx context.Context, id string) error
	DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error)
}

// IdentityInterface resolves identities in the external identity provider.
type IdentityInterface interface {
	GetIdentityIDByEmail(ctx context.Context, email string) (string, error)
	GetIdentityEmail(ctx context.Context, id string) (string, error)
}
