// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package entitlements resolves the effective plan for a user, optionally in
// the context of a tenant. Resolution is total: no subscription means the
// free tier, never an error.
package entitlements

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring"
	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/tracing"
	"github.com/canonical/entitlement-service/internal/types"
)

type Reason string

const (
	// ReasonOwner means a subscription covers the user directly.
	ReasonOwner Reason = "owner"
	// ReasonCompanyCovered means a subscription covers the tenant the user
	// asked about.
	ReasonCompanyCovered Reason = "company_covered"
	// ReasonNone means no active coverage, free tier applies.
	ReasonNone Reason = "none"
)

// Resolution is the answer to "what can this user do here".
type Resolution struct {
	HasAccess bool
	Plan      Plan
	Reason    Reason
	Features  map[string]FeatureValue

	// HasHistoricalSubscriptions is true when the user or tenant ever had a
	// subscription row, regardless of status. It gates billing-history UI
	// affordances and never affects HasAccess.
	HasHistoricalSubscriptions bool
}

type Service struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (s *Service) CreatePayer(ctx context.Context, ref types.PartyRef, externalCustomerID string) (*types.Payer, error) {
	ctx, span := s.tracer.Start(ctx, "entitlements.Service.CreatePayer")
	defer span.End()

	payer, err := s.storage.CreatePayer(ctx, ref, externalCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payer: %w", err)
	}

	return payer, nil
}

// CreateSubscription inserts a subscription keyed by its external id. A
// second create with the same external id returns the existing row, the
// unique constraint makes redelivery a no-op rather than a duplicate.
func (s *Service) CreateSubscription(ctx context.Context, payerID string, plan Plan, status types.SubscriptionStatus, externalSubscriptionID string) (*types.Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "entitlements.Service.CreateSubscription")
	defer span.End()

	sub := &types.Subscription{
		PayerID:                payerID,
		Plan:                   string(plan),
		Status:                 status,
		ExternalSubscriptionID: externalSubscriptionID,
	}

	inserted, err := s.storage.InsertSubscription(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}
	if !inserted {
		s.logger.Debugf("subscription %s already exists, returning existing row", externalSubscriptionID)
	}

	return s.storage.GetSubscriptionByExternalID(ctx, externalSubscriptionID)
}

func (s *Service) AddCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error {
	ctx, span := s.tracer.Start(ctx, "entitlements.Service.AddCoverage")
	defer span.End()

	if err := s.storage.AddCoverage(ctx, subscriptionID, party); err != nil {
		if errors.Is(err, storage.ErrForeignKeyViolation) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to add coverage: %w", err)
	}

	return nil
}

// RemoveCoverage drops one party from the coverage set. The subscription
// itself is untouched, even when the set becomes empty.
func (s *Service) RemoveCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error {
	ctx, span := s.tracer.Start(ctx, "entitlements.Service.RemoveCoverage")
	defer span.End()

	if err := s.storage.RemoveCoverage(ctx, subscriptionID, party); err != nil {
		return fmt.Errorf("failed to remove coverage: %w", err)
	}

	return nil
}

// Resolve computes the effective plan. Precedence: a subscription covering
// the user directly wins, then one covering the given tenant, then free.
func (s *Service) Resolve(ctx context.Context, userID, tenantID string) (*Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "entitlements.Service.Resolve")
	defer span.End()

	history, err := s.storage.HasSubscriptionHistory(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}

	userSubs, err := s.storage.ListSubscriptionsCoveringUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub := firstEntitled(userSubs); sub != nil {
		return resolutionFor(Plan(sub.Plan), ReasonOwner, history), nil
	}

	if tenantID != "" {
		tenantSubs, err := s.storage.ListSubscriptionsCoveringTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if sub := firstEntitled(tenantSubs); sub != nil {
			return resolutionFor(Plan(sub.Plan), ReasonCompanyCovered, history), nil
		}
	}

	return &Resolution{
		HasAccess:                  false,
		Plan:                       PlanFree,
		Reason:                     ReasonNone,
		Features:                   FeaturesForPlan(PlanFree),
		HasHistoricalSubscriptions: history,
	}, nil
}

// CheckFeatureLimit answers whether the user may consume one more unit of a
// feature. Boolean features answer the flag itself, numeric features compare
// usage against the limit with -1 meaning unlimited.
func (s *Service) CheckFeatureLimit(ctx context.Context, userID, feature string, currentUsage int64, tenantID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "entitlements.Service.CheckFeatureLimit")
	defer span.End()

	resolution, err := s.Resolve(ctx, userID, tenantID)
	if err != nil {
		return false, err
	}

	value, ok := resolution.Features[feature]
	if !ok {
		s.logger.Warnf("feature limit check for unknown feature %q", feature)
		return false, nil
	}

	if !value.Numeric {
		return value.Flag, nil
	}
	if value.Limit == -1 {
		return true, nil
	}
	return currentUsage < value.Limit, nil
}

func firstEntitled(subs []*types.Subscription) *types.Subscription {
	for _, sub := range subs {
		if sub.Status.Entitled() {
			return sub
		}
	}
	return nil
}

func resolutionFor(plan Plan, reason Reason, history bool) *Resolution {
	return &Resolution{
		HasAccess:                  true,
		Plan:                       plan,
		Reason:                     reason,
		Features:                   FeaturesForPlan(plan),
		HasHistoricalSubscriptions: history,
	}
}
