// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"

	"github.com/canonical/entitlement-service/pkg/roles"
)

type TenantType string

const (
	TenantWorkspace TenantType = "workspace"
	TenantCompany   TenantType = "company"
)

type Tenant struct {
	ID        string            `db:"id"`
	Name      string            `db:"name"`
	Type      TenantType        `db:"type"`
	Metadata  map[string]string `db:"metadata"`
	CreatedAt time.Time         `db:"created_at"`
}

type Membership struct {
	ID        string     `db:"id"`
	TenantID  string     `db:"tenant_id"`
	UserID    string     `db:"user_id"`
	Role      roles.Role `db:"role"`
	CreatedAt time.Time  `db:"created_at"`
}

type Invite struct {
	ID        string     `db:"id"`
	TenantID  string     `db:"tenant_id"`
	Email     string     `db:"email"`
	Role      roles.Role `db:"role"`
	InvitedBy string     `db:"invited_by"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt time.Time  `db:"expires_at"`
}

// PartyKind discriminates a user reference from a tenant reference.
type PartyKind string

const (
	PartyUser   PartyKind = "user"
	PartyTenant PartyKind = "tenant"
)

// PartyRef is a tagged reference to exactly one of a user or a tenant. It is
// used both for the billing identity behind a subscription and for entries in
// a subscription's coverage set.
type PartyRef struct {
	Kind PartyKind
	ID   string
}

func UserParty(userID string) PartyRef {
	return PartyRef{Kind: PartyUser, ID: userID}
}

func TenantParty(tenantID string) PartyRef {
	return PartyRef{Kind: PartyTenant, ID: tenantID}
}

type Payer struct {
	ID                 string    `db:"id"`
	Ref                PartyRef  `db:"-"`
	ExternalCustomerID string    `db:"external_customer_id"`
	CreatedAt          time.Time `db:"created_at"`
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPaused   SubscriptionStatus = "paused"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionUnpaid   SubscriptionStatus = "unpaid"
)

// Entitled reports whether a subscription in this status grants plan features.
func (s SubscriptionStatus) Entitled() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

type Subscription struct {
	ID                     string             `db:"id"`
	PayerID                string             `db:"payer_id"`
	Plan                   string             `db:"plan"`
	Status                 SubscriptionStatus `db:"status"`
	ExternalSubscriptionID string             `db:"external_subscription_id"`
	CurrentPeriodStart     time.Time          `db:"current_period_start"`
	CurrentPeriodEnd       time.Time          `db:"current_period_end"`
	FailedPaymentAttempts  int                `db:"failed_payment_attempts"`
	CreatedAt              time.Time          `db:"created_at"`
	UpdatedAt              time.Time          `db:"updated_at"`
}

type Session struct {
	Token        string    `db:"token"`
	UserID       string    `db:"user_id"`
	DeviceInfo   string    `db:"device_info"`
	CreatedAt    time.Time `db:"created_at"`
	LastActiveAt time.Time `db:"last_active_at"`
	ExpiresAt    time.Time `db:"expires_at"`
}

type TenantUser struct {
	UserID string
	Email  string
	Role   roles.Role
}
