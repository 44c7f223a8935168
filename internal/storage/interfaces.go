// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

type StorageInterface interface {
	// tenants
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *types.Tenant, paths []string) error
	DeleteTenant(ctx context.Context, id string) error

	// memberships
	GetRole(ctx context.Context, tenantID, userID string) (roles.Role, error)
	AddMember(ctx context.Context, tenantID, userID string, role roles.Role) (string, error)
	RemoveMember(ctx context.Context, tenantID, userID string) error
	UpdateMemberRole(ctx context.Context, tenantID, userID string, role roles.Role) error
	TransferOwnership(ctx context.Context, tenantID, fromUserID, toUserID string) error
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)

	// invites
	UpsertInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error)
	GetInviteByID(ctx context.Context, id string) (*types.Invite, error)
	AcceptInvite(ctx context.Context, inviteID, userID string) (*types.Invite, error)
	DeleteInvite(ctx context.Context, id string) error
	DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error)

	// payers and subscriptions
	CreatePayer(ctx context.Context, ref types.PartyRef, externalCustomerID string) (*types.Payer, error)
	GetPayerByExternalCustomerID(ctx context.Context, externalCustomerID string) (*types.Payer, error)
	InsertSubscription(ctx context.Context, sub *types.Subscription) (inserted bool, err error)
	GetSubscriptionByExternalID(ctx context.Context, externalID string) (*types.Subscription, error)
	UpdateSubscriptionByExternalID(ctx context.Context, externalID string, fields map[string]interface{}) error
	AddCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error
	RemoveCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error
	ListSubscriptionsCoveringUser(ctx context.Context, userID string) ([]*types.Subscription, error)
	ListSubscriptionsCoveringTenant(ctx context.Context, tenantID string) ([]*types.Subscription, error)
	HasSubscriptionHistory(ctx context.Context, userID, tenantID string) (bool, error)

	// sessions
	CreateSession(ctx context.Context, session *types.Session) (*types.Session, error)
	GetSessionByToken(ctx context.Context, token string) (*types.Session, error)
	TouchSession(ctx context.Context, token string, at time.Time) error
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	ListSessionsByUserID(ctx context.Context, userID string) ([]*types.Session, error)
}
