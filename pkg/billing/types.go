// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Event is the envelope the billing provider posts to the webhook endpoint.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type" validate:"required"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object json.RawMessage `json:"object" validate:"required"`
}

const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventSubscriptionPaused  = "customer.subscription.paused"
	EventSubscriptionResumed = "customer.subscription.resumed"
	EventInvoiceFailed       = "invoice.payment_failed"
	EventInvoiceSucceeded    = "invoice.payment_succeeded"
	EventCustomerCreated     = "customer.created"
	EventCustomerUpdated     = "customer.updated"
)

// Metadata carries our identifiers, set on the external objects at checkout
// time so webhook processing can link them back without a lookup.
type Metadata struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

type SubscriptionObject struct {
	ID                 string            `json:"id" validate:"required"`
	Customer           string            `json:"customer" validate:"required"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	Items              SubscriptionItems `json:"items"`
	Metadata           Metadata          `json:"metadata"`
}

type SubscriptionItems struct {
	Data []SubscriptionItem `json:"data"`
}

type SubscriptionItem struct {
	Price Price `json:"price"`
}

type Price struct {
	LookupKey string `json:"lookup_key"`
}

// LookupKey returns the price lookup key of the first subscription item.
// Subscriptions here always carry exactly one item.
func (o *SubscriptionObject) LookupKey() string {
	if len(o.Items.Data) == 0 {
		return ""
	}
	return o.Items.Data[0].Price.LookupKey
}

type InvoiceObject struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription" validate:"required"`
	AttemptCount int    `json:"attempt_count"`
}

type CustomerObject struct {
	ID       string   `json:"id" validate:"required"`
	Email    string   `json:"email"`
	Metadata Metadata `json:"metadata"`
}

// ErrMalformedPayload marks events whose object cannot be decoded or fails
// validation. Redelivery cannot fix these, so they are rejected rather than
// retried.
var ErrMalformedPayload = errors.New("malformed event payload")

var validate = validator.New()

func decodeObject[T any](event *Event) (*T, error) {
	var obj T
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, event.Type, err)
	}
	if err := validate.Struct(&obj); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, event.Type, err)
	}
	return &obj, nil
}
