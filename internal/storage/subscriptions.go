// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonical/entitlement-service/internal/types"
)

func (s *Storage) CreatePayer(ctx context.Context, ref types.PartyRef, externalCustomerID string) (*types.Payer, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreatePayer")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate payer ID: %w", err)
	}

	var userID, tenantID sql.NullString
	switch ref.Kind {
	case types.PartyUser:
		userID = sql.NullString{String: ref.ID, Valid: true}
	case types.PartyTenant:
		tenantID = sql.NullString{String: ref.ID, Valid: true}
	default:
		return nil, fmt.Errorf("payer must reference a user or a tenant, got %q", ref.Kind)
	}

	var payer types.Payer
	err = s.db.Statement(ctx).
		Insert("payers").
		Columns("id", "user_id", "tenant_id", "external_customer_id").
		Values(id.String(), userID, tenantID, externalCustomerID).
		Suffix("RETURNING id, user_id, tenant_id, external_customer_id, created_at").
		QueryRowContext(ctx).
		Scan(&payer.ID, &userID, &tenantID, &payer.ExternalCustomerID, &payer.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert payer: %w", mapConstraintError(err))
	}

	payer.Ref = partyFromColumns(userID, tenantID)
	return &payer, nil
}

func (s *Storage) GetPayerByExternalCustomerID(ctx context.Context, externalCustomerID string) (*types.Payer, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetPayerByExternalCustomerID")
	defer span.End()

	var payer types.Payer
	var userID, tenantID sql.NullString
	err := s.db.Statement(ctx).
		Select("id", "user_id", "tenant_id", "external_customer_id", "created_at").
		From("payers").
		Where(sq.Eq{"external_customer_id": externalCustomerID}).
		QueryRowContext(ctx).
		Scan(&payer.ID, &userID, &tenantID, &payer.ExternalCustomerID, &payer.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payer: %w", err)
	}

	payer.Ref = partyFromColumns(userID, tenantID)
	return &payer, nil
}

func partyFromColumns(userID, tenantID sql.NullString) types.PartyRef {
	if userID.Valid {
		return types.UserParty(userID.String)
	}
	return types.TenantParty(tenantID.String)
}

// InsertSubscription inserts a subscription keyed by its external id. A row
// already holding that external id makes this a no-op, reported through the
// inserted flag, so redelivered create events cannot produce duplicates.
func (s *Storage) InsertSubscription(ctx context.Context, sub *types.Subscription) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.InsertSubscription")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("failed to generate subscription ID: %w", err)
	}

	res, err := s.db.Statement(ctx).
		Insert("subscriptions").
		Columns("id", "payer_id", "plan", "status", "external_subscription_id", "current_period_start", "current_period_end").
		Values(id.String(), sub.PayerID, sub.Plan, sub.Status, sub.ExternalSubscriptionID, sub.CurrentPeriodStart, sub.CurrentPeriodEnd).
		Suffix("ON CONFLICT (external_subscription_id) DO NOTHING").
		ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert subscription: %w", mapConstraintError(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	sub.ID = id.String()
	return true, nil
}

func (s *Storage) GetSubscriptionByExternalID(ctx context.Context, externalID string) (*types.Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetSubscriptionByExternalID")
	defer span.End()

	var sub types.Subscription
	err := s.db.Statement(ctx).
		Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"external_subscription_id": externalID}).
		QueryRowContext(ctx).
		Scan(subscriptionFields(&sub)...)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}

// UpdateSubscriptionByExternalID overwrites the given fields on the row
// holding the external id. Last write wins by processing order. A missing row
// is ErrNotFound, callers decide whether that drops the event.
func (s *Storage) UpdateSubscriptionByExternalID(ctx context.Context, externalID string, fields map[string]interface{}) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateSubscriptionByExternalID")
	defer span.End()

	if len(fields) == 0 {
		return nil
	}

	res, err := s.db.Statement(ctx).
		Update("subscriptions").
		SetMap(fields).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"external_subscription_id": externalID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", mapConstraintError(err))
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

// AddCoverage links a user or tenant to the subscription's coverage set.
// Re-adding an existing link is a no-op.
func (s *Storage) AddCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error {
	ctx, span := s.tracer.Start(ctx, "storage.AddCoverage")
	defer span.End()

	table, column, err := coverageTable(party)
	if err != nil {
		return err
	}

	_, err = s.db.Statement(ctx).
		Insert(table).
		Columns("subscription_id", column).
		Values(subscriptionID, party.ID).
		Suffix(fmt.Sprintf("ON CONFLICT (subscription_id, %s) DO NOTHING", column)).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to add coverage: %w", mapConstraintError(err))
	}

	return nil
}

// RemoveCoverage drops a coverage link. The subscription itself is untouched.
func (s *Storage) RemoveCoverage(ctx context.Context, subscriptionID string, party types.PartyRef) error {
	ctx, span := s.tracer.Start(ctx, "storage.RemoveCoverage")
	defer span.End()

	table, column, err := coverageTable(party)
	if err != nil {
		return err
	}

	res, err := s.db.Statement(ctx).
		Delete(table).
		Where(sq.Eq{"subscription_id": subscriptionID, column: party.ID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove coverage: %w", err)
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

func coverageTable(party types.PartyRef) (table, column string, err error) {
	switch party.Kind {
	case types.PartyUser:
		return "subscription_user_coverage", "user_id", nil
	case types.PartyTenant:
		return "subscription_tenant_coverage", "tenant_id", nil
	default:
		return "", "", fmt.Errorf("coverage must reference a user or a tenant, got %q", party.Kind)
	}
}

func (s *Storage) ListSubscriptionsCoveringUser(ctx context.Context, userID string) ([]*types.Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListSubscriptionsCoveringUser")
	defer span.End()

	return s.listCoveringSubscriptions(ctx, "subscription_user_coverage", "user_id", userID)
}

func (s *Storage) ListSubscriptionsCoveringTenant(ctx context.Context, tenantID string) ([]*types.Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListSubscriptionsCoveringTenant")
	defer span.End()

	return s.listCoveringSubscriptions(ctx, "subscription_tenant_coverage", "tenant_id", tenantID)
}

func (s *Storage) listCoveringSubscriptions(ctx context.Context, table, column, id string) ([]*types.Subscription, error) {
	rows, err := s.db.Statement(ctx).
		Select(prefixColumns("s", subscriptionColumns)...).
		From("subscriptions s").
		Join(fmt.Sprintf("%s c ON s.id = c.subscription_id", table)).
		Where(sq.Eq{"c." + column: id}).
		OrderBy("s.created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list covering subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*types.Subscription
	for rows.Next() {
		var sub types.Subscription
		if err := rows.Scan(subscriptionFields(&sub)...); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, &sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return subs, nil
}

// HasSubscriptionHistory reports whether the user, or the optional tenant,
// ever appeared in any subscription's coverage set or as a payer, regardless
// of status.
func (s *Storage) HasSubscriptionHistory(ctx context.Context, userID, tenantID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.HasSubscriptionHistory")
	defer span.End()

	conditions := sq.Or{
		sq.Expr("EXISTS (SELECT 1 FROM subscription_user_coverage WHERE user_id = ?)", userID),
		sq.Expr("EXISTS (SELECT 1 FROM payers WHERE user_id = ? AND EXISTS (SELECT 1 FROM subscriptions WHERE payer_id = payers.id))", userID),
	}
	if tenantID != "" {
		conditions = append(conditions,
			sq.Expr("EXISTS (SELECT 1 FROM subscription_tenant_coverage WHERE tenant_id = ?)", tenantID),
			sq.Expr("EXISTS (SELECT 1 FROM payers WHERE tenant_id = ? AND EXISTS (SELECT 1 FROM subscriptions WHERE payer_id = payers.id))", tenantID),
		)
	}

	var has bool
	err := s.db.Statement(ctx).
		Select().
		Column(sq.Alias(conditions, "has_history")).
		QueryRowContext(ctx).
		Scan(&has)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription history: %w", err)
	}

	return has, nil
}

var subscriptionColumns = []string{
	"id", "payer_id", "plan", "status", "external_subscription_id",
	"current_period_start", "current_period_end", "failed_payment_attempts",
	"created_at", "updated_at",
}

func prefixColumns(prefix string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = prefix + "." + c
	}
	return out
}

func subscriptionFields(sub *types.Subscription) []interface{} {
	return []interface{}{
		&sub.ID, &sub.PayerID, &sub.Plan, &sub.Status, &sub.ExternalSubscriptionID,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.FailedPaymentAttempts,
		&sub.CreatedAt, &sub.UpdatedAt,
	}
}
