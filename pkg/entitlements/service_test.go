// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package entitlements

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/entitlement-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package entitlements -destination ./mock_entitlements.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package entitlements -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package entitlements -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package entitlements -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func setupService(t *testing.T) (*Service, *MockStorageInterface, *MockTracingInterface, *MockLoggerInterface) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)

	s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)
	return s, mockStorage, mockTracer, mockLogger
}

func expectSpan(mockTracer *MockTracingInterface, name string) {
	mockTracer.EXPECT().Start(gomock.Any(), name).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
}

func TestService_Resolve(t *testing.T) {
	userID := "user-1"
	tenantID := "tenant-1"

	activeUserSub := &types.Subscription{ID: "sub-1", Plan: string(PlanPro), Status: types.SubscriptionActive}
	canceledUserSub := &types.Subscription{ID: "sub-2", Plan: string(PlanEnterprise), Status: types.SubscriptionCanceled}
	trialTenantSub := &types.Subscription{ID: "sub-3", Plan: string(PlanEnterprise), Status: types.SubscriptionTrialing}

	testCases := []struct {
		name            string
		tenantID        string
		setupMocks      func(*MockStorageInterface)
		expectedPlan    Plan
		expectedReason  Reason
		expectedAccess  bool
		expectedHistory bool
	}{
		{
			name:     "direct user coverage wins",
			tenantID: tenantID,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().HasSubscriptionHistory(gomock.Any(), userID, tenantID).Return(true, nil)
				mockStorage.EXPECT().ListSubscriptionsCoveringUser(gomock.Any(), userID).Return([]*types.Subscription{activeUserSub}, nil)
			},
			expectedPlan:    PlanPro,
			expectedReason:  ReasonOwner,
			expectedAccess:  true,
			expectedHistory: true,
		},
		{
			name:     "canceled user coverage falls through to tenant",
			tenantID: tenantID,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().HasSubscriptionHistory(gomock.Any(), userID, tenantID).Return(true, nil)
				mockStorage.EXPECT().ListSubscriptionsCoveringUser(gomock.Any(), userID).Return([]*types.Subscription{canceledUserSub}, nil)
				mockStorage.EXPECT().ListSubscriptionsCoveringTenant(gomock.Any(), tenantID).Return([]*types.Subscription{trialTenantSub}, nil)
			},
			expectedPlan:    PlanEnterprise,
			expectedReason:  ReasonCompanyCovered,
			expectedAccess:  true,
			expectedHistory: true,
		},
		{
			name:     "no coverage resolves to free",
			tenantID: tenantID,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().HasSubscriptionHistory(gomock.Any(), userID, tenantID).Return(false, nil)
				mockStorage.EXPECT().ListSubscriptionsCoveringUser(gomock.Any(), userID).Return(nil, nil)
				mockStorage.EXPECT().ListSubscriptionsCoveringTenant(gomock.Any(), tenantID).Return(nil, nil)
			},
			expectedPlan:    PlanFree,
			expectedReason:  ReasonNone,
			expectedAccess:  false,
			expectedHistory: false,
		},
		{
			name:     "no tenant given skips the tenant lookup",
			tenantID: "",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().HasSubscriptionHistory(gomock.Any(), userID, "").Return(false, nil)
				mockStorage.EXPECT().ListSubscriptionsCoveringUser(gomock.Any(), userID).Return(nil, nil)
			},
			expectedPlan:    PlanFree,
			expectedReason:  ReasonNone,
			expectedAccess:  false,
			expectedHistory: false,
		},
		{
			name:     "history set even when resolving free",
			tenantID: tenantID,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().HasSubscriptionHistory(gomock.Any(), userID, tenantID).Return(true, nil)
				mockStorage.EXPECT().ListSubscriptionsCoveringUser(gomock.Any(), userID).Return([]*types.Subscription{canceledUserSub}, nil)
				mockStorage.EXPECT().ListSubscriptionsCoveringTenant(gomock.Any(), tenantID).Return(nil, nil)
			},
			expectedPlan:    PlanFree,
			expectedReason:  ReasonNone,
			expectedAccess:  false,
			expectedHistory: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, _ := setupService(t)
			expectSpan(mockTracer, "entitlements.Service.Resolve")
			tc.setupMocks(mockStorage)

			resolution, err := s.Resolve(context.Background(), userID, tc.tenantID)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resolution.Plan != tc.expectedPlan {
				t.Errorf("expected plan %q, got %q", tc.expectedPlan, resolution.Plan)
			}
			if resolution.Reason != tc.expectedReason {
				t.Errorf("expected reason %q, got %q", tc.expectedReason, resolution.Reason)
			}
			if resolution.HasAccess != tc.expectedAccess {
				t.Errorf("expected access %v, got %v", tc.expectedAccess, resolution.HasAccess)
			}
			if resolution.HasHistoricalSubscriptions != tc.expectedHistory {
				t.Errorf("expected history %v, got %v", tc.expectedHistory, resolution.HasHistoricalSubscriptions)
			}
		})
	}

	t.Run("storage failure propagates", func(t *testing.T) {
		s, mockStorage, mockTracer, _ := setupService(t)
		expectSpan(mockTracer, "entitlements.Service.Resolve")
		dbErr := errors.New("db error")
		mockStorage.EXPECT().HasSubscriptionHistory(gomock.Any(), userID, tenantID).Return(false, dbErr)

		if _, err := s.Resolve(context.Background(), userID, tenantID); !errors.Is(err, dbErr) {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestService_CheckFeatureLimit(t *testing.T) {
	userID := "user-1"
	proSub := &types.Subscription{ID: "sub-1", Plan: string(PlanPro), Status: types.SubscriptionActive}
	enterpriseSub := &types.Subscription{ID: "sub-2", Plan: string(PlanEnterprise), Status: types.SubscriptionActive}

	expectResolution := func(mockStorage *MockStorageInterface, subs []*types.Subscription) {
		mockStorage.EXPECT().HasSubscriptionHistory(gomock.Any(), userID, "").Return(len(subs) > 0, nil)
		mockStorage.EXPECT().ListSubscriptionsCoveringUser(gomock.Any(), userID).Return(subs, nil)
	}

	testCases := []struct {
		name         string
		subs         []*types.Subscription
		feature      string
		currentUsage int64
		expected     bool
	}{
		{name: "numeric under limit", subs: []*types.Subscription{proSub}, feature: FeatureSeats, currentUsage: 49, expected: true},
		{name: "numeric at limit", subs: []*types.Subscription{proSub}, feature: FeatureSeats, currentUsage: 50, expected: false},
		{name: "unlimited sentinel", subs: []*types.Subscription{enterpriseSub}, feature: FeatureSeats, currentUsage: 1 << 20, expected: true},
		{name: "boolean granted", subs: []*types.Subscription{proSub}, feature: FeatureAPIAccess, currentUsage: 0, expected: true},
		{name: "boolean denied on free", subs: nil, feature: FeatureAPIAccess, currentUsage: 0, expected: false},
		{name: "free numeric limit applies", subs: nil, feature: FeatureSeats, currentUsage: 5, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, _ := setupService(t)
			expectSpan(mockTracer, "entitlements.Service.CheckFeatureLimit")
			expectSpan(mockTracer, "entitlements.Service.Resolve")
			expectResolution(mockStorage, tc.subs)

			allowed, err := s.CheckFeatureLimit(context.Background(), userID, tc.feature, tc.currentUsage, "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if allowed != tc.expected {
				t.Fatalf("expected allowed=%v, got %v", tc.expected, allowed)
			}
		})
	}

	t.Run("unknown feature denied", func(t *testing.T) {
		s, mockStorage, mockTracer, mockLogger := setupService(t)
		expectSpan(mockTracer, "entitlements.Service.CheckFeatureLimit")
		expectSpan(mockTracer, "entitlements.Service.Resolve")
		expectResolution(mockStorage, []*types.Subscription{proSub})
		mockLogger.EXPECT().Warnf(gomock.Any(), "no_such_feature")

		allowed, err := s.CheckFeatureLimit(context.Background(), userID, "no_such_feature", 0, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if allowed {
			t.Fatal("expected unknown feature to be denied")
		}
	})
}

func TestService_CreateSubscription(t *testing.T) {
	extID := "sub_ext_1"
	existing := &types.Subscription{ID: "sub-1", PayerID: "payer-1", Plan: string(PlanPro), Status: types.SubscriptionActive, ExternalSubscriptionID: extID}

	t.Run("insert", func(t *testing.T) {
		s, mockStorage, mockTracer, _ := setupService(t)
		expectSpan(mockTracer, "entitlements.Service.CreateSubscription")
		mockStorage.EXPECT().InsertSubscription(gomock.Any(), gomock.Any()).Return(true, nil)
		mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(existing, nil)

		sub, err := s.CreateSubscription(context.Background(), "payer-1", PlanPro, types.SubscriptionActive, extID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sub.ID != "sub-1" {
			t.Fatalf("expected sub-1, got %q", sub.ID)
		}
	})

	t.Run("redelivery returns existing row", func(t *testing.T) {
		s, mockStorage, mockTracer, mockLogger := setupService(t)
		expectSpan(mockTracer, "entitlements.Service.CreateSubscription")
		mockStorage.EXPECT().InsertSubscription(gomock.Any(), gomock.Any()).Return(false, nil)
		mockLogger.EXPECT().Debugf(gomock.Any(), extID)
		mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(existing, nil)

		sub, err := s.CreateSubscription(context.Background(), "payer-1", PlanPro, types.SubscriptionActive, extID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sub.ID != "sub-1" {
			t.Fatalf("expected existing row, got %q", sub.ID)
		}
	})
}

func TestPlanFromLookupKey(t *testing.T) {
	for key, expected := range map[string]Plan{
		"PRO_MONTHLY":        PlanPro,
		"PRO_YEARLY":         PlanPro,
		"ENTERPRISE_MONTHLY": PlanEnterprise,
		"ENTERPRISE_YEARLY":  PlanEnterprise,
	} {
		plan, err := PlanFromLookupKey(key)
		if err != nil {
			t.Errorf("key %q: unexpected error %v", key, err)
		}
		if plan != expected {
			t.Errorf("key %q: expected %q, got %q", key, expected, plan)
		}
	}

	if _, err := PlanFromLookupKey("LEGACY_PLAN"); !errors.Is(err, types.ErrUnknownPlan) {
		t.Errorf("expected ErrUnknownPlan, got %v", err)
	}
}
