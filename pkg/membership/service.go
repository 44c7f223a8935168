// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package membership

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring"
	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/tracing"
	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

const defaultCheckConcurrency = 8

// ManageableMember pairs a member with whether the acting user may manage it.
type ManageableMember struct {
	Member     *types.Membership
	Manageable bool
}

type Service struct {
	storage StorageInterface

	checkConcurrency int

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	checkConcurrency int,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	if checkConcurrency <= 0 {
		checkConcurrency = defaultCheckConcurrency
	}

	return &Service{
		storage:          storage,
		checkConcurrency: checkConcurrency,
		tracer:           tracer,
		monitor:          monitor,
		logger:           logger,
	}
}

// CreateTenant creates a tenant with its creator as the sole owner.
func (s *Service) CreateTenant(ctx context.Context, name string, tenantType types.TenantType, ownerID string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Service.CreateTenant")
	defer span.End()

	t := &types.Tenant{
		Name: name,
		Type: tenantType,
	}

	created, err := s.storage.CreateTenant(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	if _, err := s.storage.AddMember(ctx, created.ID, ownerID, roles.RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	return created, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Service.GetTenant")
	defer span.End()

	tenant, err := s.storage.GetTenantByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}

	return tenant, nil
}

func (s *Service) UpdateTenant(ctx context.Context, actorID string, tenant *types.Tenant, paths []string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Service.UpdateTenant")
	defer span.End()

	actorRole, err := s.storage.GetRole(ctx, tenant.ID, actorID)
	if err != nil {
		return nil, err
	}
	if !roles.CanInvite(actorRole) {
		// Tenant metadata changes sit at the same bar as inviting: admin or above.
		return nil, types.ErrPermissionDenied
	}

	if err := s.storage.UpdateTenant(ctx, tenant, paths); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	return s.storage.GetTenantByID(ctx, tenant.ID)
}

// DeleteTenant removes the tenant and everything hanging off it. Only the
// owner may do this. An undeletable tenant (a payer still references it)
// surfaces as ErrTenantHasDependents, not a raw constraint error.
func (s *Service) DeleteTenant(ctx context.Context, actorID, tenantID string) error {
	ctx, span := s.tracer.Start(ctx, "membership.Service.DeleteTenant")
	defer span.End()

	actorRole, err := s.storage.GetRole(ctx, tenantID, actorID)
	if err != nil {
		return err
	}
	if actorRole != roles.RoleOwner {
		s.logger.Security().AuthzFailure(actorID, "tenant.delete")
		return types.ErrPermissionDenied
	}

	if err := s.storage.DeleteTenant(ctx, tenantID); err != nil {
		if errors.Is(err, storage.ErrForeignKeyViolation) {
			return fmt.Errorf("tenant %s: %w", tenantID, types.ErrTenantHasDependents)
		}
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	return nil
}

func (s *Service) ListUserTenants(ctx context.Context, userID string) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Service.ListUserTenants")
	defer span.End()

	return s.storage.ListTenantsByUserID(ctx, userID)
}

func (s *Service) GetRole(ctx context.Context, tenantID, userID string) (roles.Role, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Service.GetRole")
	defer span.End()

	return s.storage.GetRole(ctx, tenantID, userID)
}

// AddMember adds a user at the given role. The actor must outrank the role
// being granted, and owner can never be granted this way.
func (s *Service) AddMember(ctx context.Context, actorID, tenantID, userID string, role roles.Role) error {
	ctx, span := s.tracer.Start(ctx, "membership.Service.AddMember")
	defer span.End()

	if role == roles.RoleOwner || !role.Valid() {
		return fmt.Errorf("cannot grant role %q: %w", role, types.ErrInvalidRole)
	}

	actorRole, err := s.storage.GetRole(ctx, tenantID, actorID)
	if err != nil {
		return err
	}
	if !roles.CanManage(actorRole, role) {
		s.logger.Security().AuthzFailure(actorID, "member.add")
		return types.ErrPermissionDenied
	}

	if _, err := s.storage.AddMember(ctx, tenantID, userID, role); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("user %s in tenant %s: %w", userID, tenantID, types.ErrAlreadyMember)
		}
		if errors.Is(err, storage.ErrForeignKeyViolation) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// RemoveMember removes a membership. Members may remove themselves, except
// the owner, who must transfer ownership first so the tenant is never left
// ownerless.
func (s *Service) RemoveMember(ctx context.Context, actorID, tenantID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "membership.Service.RemoveMember")
	defer span.End()

	targetRole, err := s.storage.GetRole(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if targetRole == roles.RoleNone {
		return types.ErrNotFound
	}
	if targetRole == roles.RoleOwner {
		return fmt.Errorf("owner must transfer ownership before leaving: %w", types.ErrPermissionDenied)
	}

	if actorID != userID {
		actorRole, err := s.storage.GetRole(ctx, tenantID, actorID)
		if err != nil {
			return err
		}
		if !roles.CanManage(actorRole, targetRole) {
			s.logger.Security().AuthzFailure(actorID, "member.remove")
			return types.ErrPermissionDenied
		}
	}

	if err := s.storage.RemoveMember(ctx, tenantID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// UpdateRole changes a member's role. The actor must outrank both the
// member's current role and the new one. Owner is only reachable through
// TransferOwnership.
func (s *Service) UpdateRole(ctx context.Context, actorID, tenantID, userID string, role roles.Role) error {
	ctx, span := s.tracer.Start(ctx, "membership.Service.UpdateRole")
	defer span.End()

	if role == roles.RoleOwner || !role.Valid() {
		return fmt.Errorf("cannot grant role %q: %w", role, types.ErrInvalidRole)
	}

	targetRole, err := s.storage.GetRole(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if targetRole == roles.RoleNone {
		return types.ErrNotFound
	}

	actorRole, err := s.storage.GetRole(ctx, tenantID, actorID)
	if err != nil {
		return err
	}
	if !roles.CanManage(actorRole, targetRole) || !roles.CanManage(actorRole, role) {
		s.logger.Security().AuthzFailure(actorID, "member.update_role")
		return types.ErrPermissionDenied
	}

	if err := s.storage.UpdateMemberRole(ctx, tenantID, userID, role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	return nil
}

// TransferOwnership atomically demotes the current owner to admin and
// promotes the new owner. The storage layer runs both writes in one
// transaction, a failure leaves both roles untouched.
func (s *Service) TransferOwnership(ctx context.Context, tenantID, fromUserID, toUserID string) error {
	ctx, span := s.tracer.Start(ctx, "membership.Service.TransferOwnership")
	defer span.End()

	if fromUserID == toUserID {
		return fmt.Errorf("cannot transfer ownership to the current owner: %w", types.ErrInvalidRole)
	}

	if err := s.storage.TransferOwnership(ctx, tenantID, fromUserID, toUserID); err != nil {
		return err
	}

	return nil
}

func (s *Service) ListMembers(ctx context.Context, tenantID string) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Service.ListMembers")
	defer span.End()

	return s.storage.ListMembersByTenantID(ctx, tenantID)
}

// ManageableMembers lists the tenant's members annotated with whether the
// actor may manage each one. Role reads fan out with bounded concurrency so
// a large tenant cannot exhaust the connection pool, and each check is its
// own consistent read.
func (s *Service) ManageableMembers(ctx context.Context, tenantID, actorID string) ([]*ManageableMember, error) {
	ctx, span := s.tracer.Start(ctx, "membership.Service.ManageableMembers")
	defer span.End()

	members, err := s.storage.ListMembersByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	actorRole, err := s.storage.GetRole(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}

	result := make([]*ManageableMember, len(members))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.checkConcurrency)

	for i, m := range members {
		g.Go(func() error {
			role, err := s.storage.GetRole(gCtx, tenantID, m.UserID)
			if err != nil {
				return err
			}

			mu.Lock()
			result[i] = &ManageableMember{
				Member:     m,
				Manageable: roles.CanManage(actorRole, role),
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute manageable members: %w", err)
	}

	return result, nil
}
