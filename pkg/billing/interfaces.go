// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"context"

	"github.com/canonical/entitlement-service/internal/types"
)

type ServiceInterface interface {
	Process(ctx context.Context, event *Event) (Outcome, error)
}

// StorageInterface is the subset of the storage layer the billing reconciler
// depends on.
type StorageInterface interface {
	CreatePayer(ctx context.Context, ref types.PartyRef, externalCustomerID string) (*types.Payer, error)
	GetPayerByExternalCustomerID(ctx context.Context, externalCustomerID string) (*types.Payer, error)
	InsertSubscription(ctx context.Context, sub *types.Subscription) (inserted bool, err error)
	GetSubscriptionByExternalID(ctx context.Context, externalID string) (*types.Subscription, error)
	UpdateSubscriptionByExternalID(ctx context.Context, externalID string, fields map[string]interface{}) error
	AddCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error
}
