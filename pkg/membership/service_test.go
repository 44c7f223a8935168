// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package membership

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/roles"
)

//go:generate mockgen -build_flags=--mod=mod -package membership -destination ./mock_membership.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package membership -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package membership -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package membership -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func setupService(t *testing.T) (*Service, *MockStorageInterface, *MockTracingInterface, *MockLoggerInterface, *MockSecurityLoggerInterface) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockSecurity := NewMockSecurityLoggerInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)

	s := NewService(mockStorage, 4, mockTracer, mockMonitor, mockLogger)
	return s, mockStorage, mockTracer, mockLogger, mockSecurity
}

func expectSpan(mockTracer *MockTracingInterface, name string) {
	mockTracer.EXPECT().Start(gomock.Any(), name).Return(context.Background(), trace.SpanFromContext(context.Background()))
}

func TestService_CreateTenant(t *testing.T) {
	ownerID := "user-1"
	dbErr := errors.New("db error")

	testCases := []struct {
		name        string
		setupMocks  func(*MockStorageInterface)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mockStorage *MockStorageInterface) {
				created := &types.Tenant{ID: "tenant-1", Name: "Acme", Type: types.TenantCompany}
				mockStorage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(created, nil)
				mockStorage.EXPECT().AddMember(gomock.Any(), "tenant-1", ownerID, roles.RoleOwner).Return("membership-1", nil)
			},
			expectedErr: nil,
		},
		{
			name: "tenant insert fails",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
			expectedErr: dbErr,
		},
		{
			name: "owner membership fails",
			setupMocks: func(mockStorage *MockStorageInterface) {
				created := &types.Tenant{ID: "tenant-1", Name: "Acme", Type: types.TenantCompany}
				mockStorage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(created, nil)
				mockStorage.EXPECT().AddMember(gomock.Any(), "tenant-1", ownerID, roles.RoleOwner).Return("", dbErr)
			},
			expectedErr: dbErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, _, _ := setupService(t)
			expectSpan(mockTracer, "membership.Service.CreateTenant")
			tc.setupMocks(mockStorage)

			tenant, err := s.CreateTenant(context.Background(), "Acme", types.TenantCompany, ownerID)

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
			if tc.expectedErr == nil && tenant.ID != "tenant-1" {
				t.Fatalf("expected tenant-1, got %q", tenant.ID)
			}
		})
	}
}

func TestService_AddMember(t *testing.T) {
	tenantID := "tenant-1"
	actorID := "actor-1"
	userID := "user-2"

	testCases := []struct {
		name        string
		role        roles.Role
		setupMocks  func(*MockStorageInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr error
	}{
		{
			name: "admin adds member",
			role: roles.RoleMember,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleAdmin, nil)
				mockStorage.EXPECT().AddMember(gomock.Any(), tenantID, userID, roles.RoleMember).Return("membership-1", nil)
			},
			expectedErr: nil,
		},
		{
			name:        "owner role is not grantable",
			role:        roles.RoleOwner,
			setupMocks:  func(*MockStorageInterface, *MockLoggerInterface, *MockSecurityLoggerInterface) {},
			expectedErr: types.ErrInvalidRole,
		},
		{
			name: "member cannot add",
			role: roles.RoleMember,
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleMember, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure(actorID, "member.add")
			},
			expectedErr: types.ErrPermissionDenied,
		},
		{
			name: "admin cannot add another admin",
			role: roles.RoleAdmin,
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleAdmin, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure(actorID, "member.add")
			},
			expectedErr: types.ErrPermissionDenied,
		},
		{
			name: "duplicate membership",
			role: roles.RoleMember,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleOwner, nil)
				mockStorage.EXPECT().AddMember(gomock.Any(), tenantID, userID, roles.RoleMember).Return("", storage.ErrDuplicateKey)
			},
			expectedErr: types.ErrAlreadyMember,
		},
		{
			name: "tenant or user missing",
			role: roles.RoleMember,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleOwner, nil)
				mockStorage.EXPECT().AddMember(gomock.Any(), tenantID, userID, roles.RoleMember).Return("", storage.ErrForeignKeyViolation)
			},
			expectedErr: types.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, mockLogger, mockSecurity := setupService(t)
			expectSpan(mockTracer, "membership.Service.AddMember")
			tc.setupMocks(mockStorage, mockLogger, mockSecurity)

			err := s.AddMember(context.Background(), actorID, tenantID, userID, tc.role)

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_RemoveMember(t *testing.T) {
	tenantID := "tenant-1"

	testCases := []struct {
		name        string
		actorID     string
		userID      string
		setupMocks  func(*MockStorageInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr error
	}{
		{
			name:    "member leaves on their own",
			actorID: "user-2",
			userID:  "user-2",
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "user-2").Return(roles.RoleMember, nil)
				mockStorage.EXPECT().RemoveMember(gomock.Any(), tenantID, "user-2").Return(nil)
			},
			expectedErr: nil,
		},
		{
			name:    "owner cannot leave without a transfer",
			actorID: "owner-1",
			userID:  "owner-1",
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "owner-1").Return(roles.RoleOwner, nil)
			},
			expectedErr: types.ErrPermissionDenied,
		},
		{
			name:    "admin removes member",
			actorID: "admin-1",
			userID:  "user-2",
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "user-2").Return(roles.RoleMember, nil)
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "admin-1").Return(roles.RoleAdmin, nil)
				mockStorage.EXPECT().RemoveMember(gomock.Any(), tenantID, "user-2").Return(nil)
			},
			expectedErr: nil,
		},
		{
			name:    "member cannot remove a peer",
			actorID: "user-3",
			userID:  "user-2",
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "user-2").Return(roles.RoleMember, nil)
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "user-3").Return(roles.RoleMember, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure("user-3", "member.remove")
			},
			expectedErr: types.ErrPermissionDenied,
		},
		{
			name:    "target not a member",
			actorID: "admin-1",
			userID:  "stranger",
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "stranger").Return(roles.RoleNone, nil)
			},
			expectedErr: types.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, mockLogger, mockSecurity := setupService(t)
			expectSpan(mockTracer, "membership.Service.RemoveMember")
			tc.setupMocks(mockStorage, mockLogger, mockSecurity)

			err := s.RemoveMember(context.Background(), tc.actorID, tenantID, tc.userID)

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_UpdateRole(t *testing.T) {
	tenantID := "tenant-1"
	actorID := "owner-1"
	userID := "user-2"

	testCases := []struct {
		name        string
		role        roles.Role
		setupMocks  func(*MockStorageInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr error
	}{
		{
			name: "owner promotes member to admin",
			role: roles.RoleAdmin,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, userID).Return(roles.RoleMember, nil)
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleOwner, nil)
				mockStorage.EXPECT().UpdateMemberRole(gomock.Any(), tenantID, userID, roles.RoleAdmin).Return(nil)
			},
			expectedErr: nil,
		},
		{
			name:        "owner role is not assignable",
			role:        roles.RoleOwner,
			setupMocks:  func(*MockStorageInterface, *MockLoggerInterface, *MockSecurityLoggerInterface) {},
			expectedErr: types.ErrInvalidRole,
		},
		{
			name: "admin cannot grant admin",
			role: roles.RoleAdmin,
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, userID).Return(roles.RoleMember, nil)
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleAdmin, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure(actorID, "member.update_role")
			},
			expectedErr: types.ErrPermissionDenied,
		},
		{
			name: "target missing",
			role: roles.RoleAdmin,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, userID).Return(roles.RoleNone, nil)
			},
			expectedErr: types.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, mockLogger, mockSecurity := setupService(t)
			expectSpan(mockTracer, "membership.Service.UpdateRole")
			tc.setupMocks(mockStorage, mockLogger, mockSecurity)

			err := s.UpdateRole(context.Background(), actorID, tenantID, userID, tc.role)

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_TransferOwnership(t *testing.T) {
	tenantID := "tenant-1"

	t.Run("delegates to storage", func(t *testing.T) {
		s, mockStorage, mockTracer, _, _ := setupService(t)
		expectSpan(mockTracer, "membership.Service.TransferOwnership")
		mockStorage.EXPECT().TransferOwnership(gomock.Any(), tenantID, "owner-1", "user-2").Return(nil)

		if err := s.TransferOwnership(context.Background(), tenantID, "owner-1", "user-2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("self transfer is rejected", func(t *testing.T) {
		s, _, mockTracer, _, _ := setupService(t)
		expectSpan(mockTracer, "membership.Service.TransferOwnership")

		err := s.TransferOwnership(context.Background(), tenantID, "owner-1", "owner-1")
		if !errors.Is(err, types.ErrInvalidRole) {
			t.Fatalf("expected ErrInvalidRole, got %v", err)
		}
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		s, mockStorage, mockTracer, _, _ := setupService(t)
		expectSpan(mockTracer, "membership.Service.TransferOwnership")
		mockStorage.EXPECT().TransferOwnership(gomock.Any(), tenantID, "user-2", "user-3").Return(types.ErrPermissionDenied)

		err := s.TransferOwnership(context.Background(), tenantID, "user-2", "user-3")
		if !errors.Is(err, types.ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
	})
}

func TestService_DeleteTenant(t *testing.T) {
	tenantID := "tenant-1"

	testCases := []struct {
		name        string
		actorID     string
		setupMocks  func(*MockStorageInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr error
	}{
		{
			name:    "owner deletes",
			actorID: "owner-1",
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "owner-1").Return(roles.RoleOwner, nil)
				mockStorage.EXPECT().DeleteTenant(gomock.Any(), tenantID).Return(nil)
			},
			expectedErr: nil,
		},
		{
			name:    "admin denied",
			actorID: "admin-1",
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "admin-1").Return(roles.RoleAdmin, nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure("admin-1", "tenant.delete")
			},
			expectedErr: types.ErrPermissionDenied,
		},
		{
			name:    "payer still references the tenant",
			actorID: "owner-1",
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockLoggerInterface, _ *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, "owner-1").Return(roles.RoleOwner, nil)
				mockStorage.EXPECT().DeleteTenant(gomock.Any(), tenantID).Return(storage.ErrForeignKeyViolation)
			},
			expectedErr: types.ErrTenantHasDependents,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, mockLogger, mockSecurity := setupService(t)
			expectSpan(mockTracer, "membership.Service.DeleteTenant")
			tc.setupMocks(mockStorage, mockLogger, mockSecurity)

			err := s.DeleteTenant(context.Background(), tc.actorID, tenantID)

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_ManageableMembers(t *testing.T) {
	tenantID := "tenant-1"
	actorID := "admin-1"

	members := []*types.Membership{
		{ID: "m-1", TenantID: tenantID, UserID: "owner-1", Role: roles.RoleOwner},
		{ID: "m-2", TenantID: tenantID, UserID: "admin-1", Role: roles.RoleAdmin},
		{ID: "m-3", TenantID: tenantID, UserID: "user-2", Role: roles.RoleMember},
		{ID: "m-4", TenantID: tenantID, UserID: "user-3", Role: roles.RoleGuest},
	}

	t.Run("annotates each member", func(t *testing.T) {
		s, mockStorage, mockTracer, _, _ := setupService(t)
		expectSpan(mockTracer, "membership.Service.ManageableMembers")

		mockStorage.EXPECT().ListMembersByTenantID(gomock.Any(), tenantID).Return(members, nil)
		mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleAdmin, nil)
		for _, m := range members {
			mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, m.UserID).Return(m.Role, nil)
		}

		result, err := s.ManageableMembers(context.Background(), tenantID, actorID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result) != len(members) {
			t.Fatalf("expected %d entries, got %d", len(members), len(result))
		}

		expected := map[string]bool{
			"owner-1": false,
			"admin-1": false,
			"user-2":  true,
			"user-3":  true,
		}
		for _, mm := range result {
			if mm.Manageable != expected[mm.Member.UserID] {
				t.Errorf("member %s: expected manageable=%v, got %v", mm.Member.UserID, expected[mm.Member.UserID], mm.Manageable)
			}
		}
	})

	t.Run("role check failure aborts", func(t *testing.T) {
		s, mockStorage, mockTracer, _, _ := setupService(t)
		expectSpan(mockTracer, "membership.Service.ManageableMembers")
		dbErr := errors.New("db error")

		mockStorage.EXPECT().ListMembersByTenantID(gomock.Any(), tenantID).Return(members, nil)
		mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, actorID).Return(roles.RoleAdmin, nil)
		mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, gomock.Any()).Return(roles.RoleNone, dbErr).MinTimes(1)
		mockStorage.EXPECT().GetRole(gomock.Any(), tenantID, gomock.Any()).Return(roles.RoleMember, nil).AnyTimes()

		if _, err := s.ManageableMembers(context.Background(), tenantID, actorID); !errors.Is(err, dbErr) {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestService_GetTenant(t *testing.T) {
	t.Run("maps storage not found", func(t *testing.T) {
		s, mockStorage, mockTracer, _, _ := setupService(t)
		expectSpan(mockTracer, "membership.Service.GetTenant")
		mockStorage.EXPECT().GetTenantByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

		if _, err := s.GetTenant(context.Background(), "missing"); !errors.Is(err, types.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
