// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package entitlements

import (
	"context"

	"github.com/canonical/entitlement-service/internal/types"
)

type ServiceInterface interface {
	CreatePayer(ctx context.Context, ref types.PartyRef, externalCustomerID string) (*types.Payer, error)
	CreateSubscription(ctx context.Context, payerID string, plan Plan, status types.SubscriptionStatus, externalSubscriptionID string) (*types.Subscription, error)
	AddCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error
	RemoveCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error

	Resolve(ctx context.Context, userID, tenantID string) (*Resolution, error)
	CheckFeatureLimit(ctx context.Context, userID, feature string, currentUsage int64, tenantID string) (bool, error)
}

// StorageInterface is the subset of the storage layer the entitlements
// package depends on.
type StorageInterface interface {
	CreatePayer(ctx context.Context, ref types.PartyRef, externalCustomerID string) (*types.Payer, error)
	InsertSubscription(ctx context.Context, sub *types.Subscription) (inserted bool, err error)
	GetSubscriptionByExternalID(ctx context.Context, externalID string) (*types.Subscription, error)
	AddCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error
	RemoveCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error
	ListSubscriptionsCoveringUser(ctx context.Context, userID string) ([]*types.Subscription, error)
	ListSubscriptionsCoveringTenant(ctx context.Context, tenantID string) ([]*types.Subscription, error)
	HasSubscriptionHistory(ctx context.Context, userID, tenantID string) (bool, error)
}
