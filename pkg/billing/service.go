// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package billing reconciles external billing lifecycle events into the
// subscription model. The delivery transport is at-least-once and unordered,
// so every handler is idempotent and keys its writes on the external
// subscription id.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring"
	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/tracing"
	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/entitlements"
)

// failedPaymentThreshold is the attempt count at which a subscription flips
// to past_due. Earlier failures are recorded without touching entitlement.
const failedPaymentThreshold = 3

// Outcome reports how an event was resolved. Dropped events are still acked
// to the transport, redelivering them would not change anything.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeDropped Outcome = "dropped"
)

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

// Process dispatches an event to its handler. Unrecognized event types are
// dropped, the provider sends more types than we subscribe to.
func (s *Service) Process(ctx context.Context, event *Event) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "billing.Service.Process")
	defer span.End()

	switch event.Type {
	case EventSubscriptionCreated:
		obj, err := decodeObject[SubscriptionObject](event)
		if err != nil {
			return OutcomeDropped, err
		}
		return s.handleSubscriptionCreated(ctx, obj)
	case EventSubscriptionUpdated, EventSubscriptionPaused, EventSubscriptionResumed:
		obj, err := decodeObject[SubscriptionObject](event)
		if err != nil {
			return OutcomeDropped, err
		}
		return s.handleSubscriptionUpdated(ctx, obj)
	case EventSubscriptionDeleted:
		obj, err := decodeObject[SubscriptionObject](event)
		if err != nil {
			return OutcomeDropped, err
		}
		return s.handleSubscriptionDeleted(ctx, obj)
	case EventInvoiceFailed:
		obj, err := decodeObject[InvoiceObject](event)
		if err != nil {
			return OutcomeDropped, err
		}
		return s.handleInvoicePaymentFailed(ctx, obj)
	case EventInvoiceSucceeded:
		obj, err := decodeObject[InvoiceObject](event)
		if err != nil {
			return OutcomeDropped, err
		}
		return s.handleInvoicePaymentSucceeded(ctx, obj)
	case EventCustomerCreated, EventCustomerUpdated:
		obj, err := decodeObject[CustomerObject](event)
		if err != nil {
			return OutcomeDropped, err
		}
		return s.handleCustomer(ctx, obj)
	default:
		s.logger.Debugf("ignoring unhandled event type %s", event.Type)
		return OutcomeDropped, nil
	}
}

// handleSubscriptionCreated inserts the subscription, resolving (or
// defensively creating) its payer first. A replayed create observes the
// unique external id and drops out without a second insert.
func (s *Service) handleSubscriptionCreated(ctx context.Context, obj *SubscriptionObject) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "billing.Service.handleSubscriptionCreated")
	defer span.End()

	plan, err := entitlements.PlanFromLookupKey(obj.LookupKey())
	if err != nil {
		// Unmapped price. Retrying cannot fix it, so log and drop.
		s.logger.Errorf("subscription %s: %v", obj.ID, err)
		return OutcomeDropped, nil
	}

	payer, err := s.resolvePayer(ctx, obj)
	if err != nil {
		return OutcomeDropped, err
	}
	if payer == nil {
		s.logger.Warnf("subscription %s: no payer for customer %s and no metadata to create one", obj.ID, obj.Customer)
		return OutcomeDropped, nil
	}

	status, ok := mapStatus(obj.Status)
	if !ok {
		s.logger.Warnf("subscription %s: unknown status %q", obj.ID, obj.Status)
		return OutcomeDropped, nil
	}

	sub := &types.Subscription{
		PayerID:                payer.ID,
		Plan:                   string(plan),
		Status:                 status,
		ExternalSubscriptionID: obj.ID,
		CurrentPeriodStart:     time.Unix(obj.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:       time.Unix(obj.CurrentPeriodEnd, 0).UTC(),
	}

	inserted, err := s.storage.InsertSubscription(ctx, sub)
	if err != nil {
		return OutcomeDropped, fmt.Errorf("failed to insert subscription: %w", err)
	}
	if !inserted {
		s.logger.Debugf("subscription %s already exists, treating create as redelivery", obj.ID)
		return OutcomeDropped, nil
	}

	created, err := s.storage.GetSubscriptionByExternalID(ctx, obj.ID)
	if err != nil {
		return OutcomeDropped, fmt.Errorf("failed to read back subscription: %w", err)
	}

	// The payer party is covered by default; additional coverage is managed
	// through the entitlements API.
	if err := s.storage.AddCoverage(ctx, created.ID, payer.Ref); err != nil {
		return OutcomeDropped, fmt.Errorf("failed to add payer coverage: %w", err)
	}

	return OutcomeApplied, nil
}

// handleSubscriptionUpdated overwrites the mutable fields. Updates are
// last-write-wins in processing order; an update for a subscription we have
// never seen is dropped rather than fabricated, the next full sync heals it.
func (s *Service) handleSubscriptionUpdated(ctx context.Context, obj *SubscriptionObject) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "billing.Service.handleSubscriptionUpdated")
	defer span.End()

	status, ok := mapStatus(obj.Status)
	if !ok {
		s.logger.Warnf("subscription %s: unknown status %q", obj.ID, obj.Status)
		return OutcomeDropped, nil
	}

	fields := map[string]interface{}{
		"status":               status,
		"current_period_start": time.Unix(obj.CurrentPeriodStart, 0).UTC(),
		"current_period_end":   time.Unix(obj.CurrentPeriodEnd, 0).UTC(),
	}
	if plan, err := entitlements.PlanFromLookupKey(obj.LookupKey()); err == nil {
		fields["plan"] = string(plan)
	} else {
		s.logger.Warnf("subscription %s: unmapped lookup key %q, keeping existing plan", obj.ID, obj.LookupKey())
	}

	if err := s.storage.UpdateSubscriptionByExternalID(ctx, obj.ID, fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warnf("update for unknown subscription %s, dropping", obj.ID)
			return OutcomeDropped, nil
		}
		return OutcomeDropped, fmt.Errorf("failed to update subscription: %w", err)
	}

	return OutcomeApplied, nil
}

// handleSubscriptionDeleted marks the row canceled. The row itself stays,
// coverage and history must remain queryable.
func (s *Service) handleSubscriptionDeleted(ctx context.Context, obj *SubscriptionObject) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "billing.Service.handleSubscriptionDeleted")
	defer span.End()

	fields := map[string]interface{}{"status": types.SubscriptionCanceled}
	if err := s.storage.UpdateSubscriptionByExternalID(ctx, obj.ID, fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warnf("delete for unknown subscription %s, dropping", obj.ID)
			return OutcomeDropped, nil
		}
		return OutcomeDropped, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	return OutcomeApplied, nil
}

// handleInvoicePaymentFailed records the attempt count; entitlement only
// drops once the provider's retry schedule is exhausted.
func (s *Service) handleInvoicePaymentFailed(ctx context.Context, obj *InvoiceObject) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "billing.Service.handleInvoicePaymentFailed")
	defer span.End()

	if _, err := s.storage.GetSubscriptionByExternalID(ctx, obj.Subscription); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Invoice events can precede the subscription create.
			s.logger.Warnf("payment failure for unknown subscription %s, dropping", obj.Subscription)
			return OutcomeDropped, nil
		}
		return OutcomeDropped, err
	}

	fields := map[string]interface{}{"failed_payment_attempts": obj.AttemptCount}
	if obj.AttemptCount >= failedPaymentThreshold {
		fields["status"] = types.SubscriptionPastDue
	}

	if err := s.storage.UpdateSubscriptionByExternalID(ctx, obj.Subscription, fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return OutcomeDropped, nil
		}
		return OutcomeDropped, fmt.Errorf("failed to record payment failure: %w", err)
	}

	return OutcomeApplied, nil
}

// handleInvoicePaymentSucceeded restores a past_due subscription to active
// and resets the failure counter. Anything else is a routine renewal.
func (s *Service) handleInvoicePaymentSucceeded(ctx context.Context, obj *InvoiceObject) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "billing.Service.handleInvoicePaymentSucceeded")
	defer span.End()

	sub, err := s.storage.GetSubscriptionByExternalID(ctx, obj.Subscription)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warnf("payment success for unknown subscription %s, dropping", obj.Subscription)
			return OutcomeDropped, nil
		}
		return OutcomeDropped, err
	}

	if sub.Status != types.SubscriptionPastDue {
		return OutcomeDropped, nil
	}

	fields := map[string]interface{}{
		"status":                  types.SubscriptionActive,
		"failed_payment_attempts": 0,
	}
	if err := s.storage.UpdateSubscriptionByExternalID(ctx, obj.Subscription, fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return OutcomeDropped, nil
		}
		return OutcomeDropped, fmt.Errorf("failed to restore subscription: %w", err)
	}

	return OutcomeApplied, nil
}

// handleCustomer pre-creates a payer for a customer carrying our metadata, so
// the subscription create that follows finds it already linked.
func (s *Service) handleCustomer(ctx context.Context, obj *CustomerObject) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "billing.Service.handleCustomer")
	defer span.End()

	if _, err := s.storage.GetPayerByExternalCustomerID(ctx, obj.ID); err == nil {
		return OutcomeDropped, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return OutcomeDropped, err
	}

	ref, ok := partyFromMetadata(obj.Metadata)
	if !ok {
		s.logger.Debugf("customer %s carries no linkable metadata, dropping", obj.ID)
		return OutcomeDropped, nil
	}

	if _, err := s.storage.CreatePayer(ctx, ref, obj.ID); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Concurrent delivery created it first.
			return OutcomeDropped, nil
		}
		return OutcomeDropped, fmt.Errorf("failed to create payer: %w", err)
	}

	return OutcomeApplied, nil
}

func (s *Service) resolvePayer(ctx context.Context, obj *SubscriptionObject) (*types.Payer, error) {
	payer, err := s.storage.GetPayerByExternalCustomerID(ctx, obj.Customer)
	if err == nil {
		return payer, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	// Checkout races can deliver the subscription before the customer event.
	ref, ok := partyFromMetadata(obj.Metadata)
	if !ok {
		return nil, nil
	}

	payer, err = s.storage.CreatePayer(ctx, ref, obj.Customer)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return s.storage.GetPayerByExternalCustomerID(ctx, obj.Customer)
		}
		return nil, fmt.Errorf("failed to create payer: %w", err)
	}
	return payer, nil
}

func partyFromMetadata(md Metadata) (types.PartyRef, bool) {
	switch {
	case md.TenantID != "":
		return types.TenantParty(md.TenantID), true
	case md.UserID != "":
		return types.UserParty(md.UserID), true
	default:
		return types.PartyRef{}, false
	}
}

func mapStatus(s string) (types.SubscriptionStatus, bool) {
	switch types.SubscriptionStatus(s) {
	case types.SubscriptionActive, types.SubscriptionPastDue, types.SubscriptionCanceled,
		types.SubscriptionPaused, types.SubscriptionTrialing, types.SubscriptionUnpaid:
		return types.SubscriptionStatus(s), true
	default:
		return "", false
	}
}
