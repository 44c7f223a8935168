// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package webhooks receives identity-provider callbacks. The registration
// hook provisions the personal workspace every new user gets, the login hook
// records the session row issued tokens are checked against.
package webhooks

import (
	"context"
	"fmt"

	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring"
	"github.com/canonical/entitlement-service/internal/tracing"
	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

type Service struct {
	storage  StorageInterface
	sessions SessionCreatorInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	sessions SessionCreatorInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		sessions: sessions,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

// HandleRegistration provisions a workspace tenant for a freshly registered
// identity and seats the identity as its owner.
func (s *Service) HandleRegistration(ctx context.Context, identityID, email string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	s.logger.Debugf("handling registration for identity %s with email %s", identityID, email)

	if identityID == "" || email == "" {
		return nil, fmt.Errorf("identity ID or email is empty")
	}

	tenant := &types.Tenant{
		Name: fmt.Sprintf("%s's Workspace", email),
		Type: types.TenantWorkspace,
	}

	created, err := s.storage.CreateTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	if _, err := s.storage.AddMember(ctx, created.ID, identityID, roles.RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.logger.Infof("provisioned workspace %s for user %s", created.ID, identityID)
	return created, nil
}

// HandleLogin persists the session the identity provider just issued. Without
// the row, the API middleware treats the token as revoked.
func (s *Service) HandleLogin(ctx context.Context, identityID, sessionToken, deviceInfo string) (*types.Session, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleLogin")
	defer span.End()

	s.logger.Debugf("handling login for identity %s", identityID)

	if identityID == "" || sessionToken == "" {
		return nil, fmt.Errorf("identity ID or session token is empty")
	}

	session, err := s.sessions.Create(ctx, identityID, sessionToken, deviceInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Infof("recorded session for user %s", identityID)
	return session, nil
}
