// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package identity resolves user identities through the Kratos admin API.
// The service stores only identity IDs; emails live in Kratos traits.
package identity

import (
	"context"
	"fmt"
	"net/http"

	ory "github.com/ory/client-go"

	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring"
	"github.com/canonical/entitlement-service/internal/tracing"
)

type ClientInterface interface {
	// GetIdentityIDByEmail returns the identity id for an email, or empty
	// string when no identity exists.
	GetIdentityIDByEmail(ctx context.Context, email string) (string, error)
	// GetIdentityEmail returns the email trait for an identity id.
	GetIdentityEmail(ctx context.Context, id string) (string, error)
}

type Client struct {
	client  *ory.APIClient
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewClient(kratosAdminURL string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	conf := ory.NewConfiguration()
	conf.Servers = ory.ServerConfigurations{{URL: kratosAdminURL}}
	return &Client{
		client:  ory.NewAPIClient(conf),
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (c *Client) GetIdentityIDByEmail(ctx context.Context, email string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "identity.GetIdentityIDByEmail")
	defer span.End()

	// NOTE: the empty page token works around https://github.com/ory/sdk/issues/461
	ids, r, err := c.client.IdentityAPI.ListIdentities(ctx).CredentialsIdentifier(email).PageToken("").Execute()
	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to list identities: %w", err)
	}

	if len(ids) == 0 {
		return "", nil
	}

	// Emails are unique credential identifiers in Kratos.
	return ids[0].Id, nil
}

func (c *Client) GetIdentityEmail(ctx context.Context, id string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "identity.GetIdentityEmail")
	defer span.End()

	identity, _, err := c.client.IdentityAPI.GetIdentity(ctx, id).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to get identity: %w", err)
	}

	traits, ok := identity.Traits.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("identity %s has no traits", id)
	}

	email, ok := traits["email"].(string)
	if !ok {
		return "", fmt.Errorf("identity %s has no email trait", id)
	}

	return email, nil
}
