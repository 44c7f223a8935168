// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package invites drives the pending-invitation state machine. Every invite
// resolves exactly one way: accepted into a membership, declined, revoked, or
// swept after expiry.
package invites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring"
	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/tracing"
	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

// InviteResult reports how an invitation request was satisfied. An email
// belonging to an already-registered user is added as a member on the spot,
// in which case Invite is nil and DirectlyAdded is true.
type InviteResult struct {
	Invite        *types.Invite
	DirectlyAdded bool
}

type Service struct {
	storage  StorageInterface
	identity IdentityInterface

	inviteLifetime time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	identity IdentityInterface,
	inviteLifetime time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:        storage,
		identity:       identity,
		inviteLifetime: inviteLifetime,
		tracer:         tracer,
		monitor:        monitor,
		logger:         logger,
	}
}

// Invite creates or refreshes a pending invite for an email address. The
// owner role is never grantable through an invite, ownership only moves
// between existing members.
func (s *Service) Invite(ctx context.Context, actorID, tenantID, email string, role roles.Role) (*InviteResult, error) {
	ctx, span := s.tracer.Start(ctx, "invites.Service.Invite")
	defer span.End()

	if role == roles.RoleOwner || !role.Valid() {
		return nil, fmt.Errorf("cannot invite as role %q: %w", role, types.ErrInvalidRole)
	}

	actorRole, err := s.storage.GetRole(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}
	if !roles.CanInvite(actorRole) {
		s.logger.Security().AuthzFailure(actorID, "invite.create")
		return nil, types.ErrPermissionDenied
	}

	userID, err := s.identity.GetIdentityIDByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up identity for %s: %w", email, err)
	}

	if userID != "" {
		existingRole, err := s.storage.GetRole(ctx, tenantID, userID)
		if err != nil {
			return nil, err
		}
		if existingRole != roles.RoleNone {
			return nil, fmt.Errorf("user %s in tenant %s: %w", userID, tenantID, types.ErrAlreadyMember)
		}

		// Registered users skip the pending state entirely.
		if _, err := s.storage.AddMember(ctx, tenantID, userID, role); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				return nil, fmt.Errorf("user %s in tenant %s: %w", userID, tenantID, types.ErrAlreadyMember)
			}
			return nil, fmt.Errorf("failed to add member directly: %w", err)
		}

		return &InviteResult{DirectlyAdded: true}, nil
	}

	invite := &types.Invite{
		TenantID:  tenantID,
		Email:     strings.ToLower(email),
		Role:      role,
		InvitedBy: actorID,
		ExpiresAt: time.Now().UTC().Add(s.inviteLifetime),
	}

	created, err := s.storage.UpsertInvite(ctx, invite)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert invite: %w", err)
	}

	return &InviteResult{Invite: created}, nil
}

func (s *Service) GetInvite(ctx context.Context, inviteID string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "invites.Service.GetInvite")
	defer span.End()

	invite, err := s.storage.GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}

	return invite, nil
}

// Accept consumes the invite and creates the membership atomically. A second
// accept of the same invite observes the row already gone and fails with
// NotFound, never a duplicate membership.
func (s *Service) Accept(ctx context.Context, inviteID, userID string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "invites.Service.Accept")
	defer span.End()

	invite, err := s.storage.GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}

	if time.Now().UTC().After(invite.ExpiresAt) {
		return nil, fmt.Errorf("invite %s: %w", inviteID, types.ErrInviteExpired)
	}

	if err := s.checkEmailMatch(ctx, invite, userID); err != nil {
		return nil, err
	}

	consumed, err := s.storage.AcceptInvite(ctx, inviteID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Consumed between our read and the accept.
			return nil, types.ErrNotFound
		}
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("user %s in tenant %s: %w", userID, invite.TenantID, types.ErrAlreadyMember)
		}
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}

	return consumed, nil
}

// Decline deletes the invite without creating a membership.
func (s *Service) Decline(ctx context.Context, inviteID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "invites.Service.Decline")
	defer span.End()

	invite, err := s.storage.GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return err
	}

	if err := s.checkEmailMatch(ctx, invite, userID); err != nil {
		return err
	}

	if err := s.storage.DeleteInvite(ctx, inviteID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to decline invite: %w", err)
	}

	return nil
}

// Revoke lets a tenant admin withdraw a pending invite.
func (s *Service) Revoke(ctx context.Context, actorID, inviteID string) error {
	ctx, span := s.tracer.Start(ctx, "invites.Service.Revoke")
	defer span.End()

	invite, err := s.storage.GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return err
	}

	actorRole, err := s.storage.GetRole(ctx, invite.TenantID, actorID)
	if err != nil {
		return err
	}
	if !roles.CanInvite(actorRole) {
		s.logger.Security().AuthzFailure(actorID, "invite.revoke")
		return types.ErrPermissionDenied
	}

	if err := s.storage.DeleteInvite(ctx, inviteID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to revoke invite: %w", err)
	}

	return nil
}

// SweepExpired bulk-deletes invites past their expiry. Safe to run repeatedly
// and concurrently, already-swept rows are a no-op.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "invites.Service.SweepExpired")
	defer span.End()

	count, err := s.storage.DeleteExpiredInvites(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired invites: %w", err)
	}

	if count > 0 {
		s.logger.Infof("swept %d expired invites", count)
	}

	return count, nil
}

func (s *Service) checkEmailMatch(ctx context.Context, invite *types.Invite, userID string) error {
	email, err := s.identity.GetIdentityEmail(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve email for %s: %w", userID, err)
	}
	if !strings.EqualFold(email, invite.Email) {
		return fmt.Errorf("invite %s: %w", invite.ID, types.ErrEmailMismatch)
	}
	return nil
}
