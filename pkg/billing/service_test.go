// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package billing -destination ./mock_billing.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package billing -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package billing -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package billing -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func setupService(t *testing.T) (*Service, *MockStorageInterface, *MockLoggerInterface) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warnf(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)
	return s, mockStorage, mockLogger
}

func subscriptionEvent(t *testing.T, eventType, extID, customer, status, lookupKey string, md Metadata) *Event {
	t.Helper()
	object := map[string]any{
		"id":                   extID,
		"customer":             customer,
		"status":               status,
		"current_period_start": time.Now().Unix(),
		"current_period_end":   time.Now().Add(30 * 24 * time.Hour).Unix(),
		"items": map[string]any{
			"data": []map[string]any{
				{"price": map[string]any{"lookup_key": lookupKey}},
			},
		},
		"metadata": md,
	}
	raw, err := json.Marshal(object)
	if err != nil {
		t.Fatal(err)
	}
	return &Event{ID: "evt-1", Type: eventType, Data: EventData{Object: raw}}
}

func invoiceEvent(t *testing.T, eventType, extSubID string, attempts int) *Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":            "in_1",
		"subscription":  extSubID,
		"attempt_count": attempts,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &Event{ID: "evt-2", Type: eventType, Data: EventData{Object: raw}}
}

func TestService_SubscriptionCreated(t *testing.T) {
	extID := "sub_ext_1"
	customer := "cus_1"
	payer := &types.Payer{ID: "payer-1", Ref: types.UserParty("user-1"), ExternalCustomerID: customer}
	created := &types.Subscription{ID: "sub-1", ExternalSubscriptionID: extID}

	testCases := []struct {
		name            string
		event           *Event
		setupMocks      func(*MockStorageInterface)
		expectedOutcome Outcome
	}{
		{
			name:  "insert with existing payer",
			event: subscriptionEvent(t, EventSubscriptionCreated, extID, customer, "active", "PRO_MONTHLY", Metadata{}),
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetPayerByExternalCustomerID(gomock.Any(), customer).Return(payer, nil)
				mockStorage.EXPECT().InsertSubscription(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, sub *types.Subscription) (bool, error) {
						if sub.Plan != "pro" || sub.Status != types.SubscriptionActive || sub.PayerID != "payer-1" {
							t.Errorf("unexpected subscription payload: %+v", sub)
						}
						return true, nil
					})
				mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(created, nil)
				mockStorage.EXPECT().AddCoverage(gomock.Any(), "sub-1", payer.Ref).Return(nil)
			},
			expectedOutcome: OutcomeApplied,
		},
		{
			name:  "redelivered create is a no-op",
			event: subscriptionEvent(t, EventSubscriptionCreated, extID, customer, "active", "PRO_MONTHLY", Metadata{}),
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetPayerByExternalCustomerID(gomock.Any(), customer).Return(payer, nil)
				mockStorage.EXPECT().InsertSubscription(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			expectedOutcome: OutcomeDropped,
		},
		{
			name:            "unknown plan is logged and dropped",
			event:           subscriptionEvent(t, EventSubscriptionCreated, extID, customer, "active", "LEGACY_PLAN", Metadata{}),
			setupMocks:      func(*MockStorageInterface) {},
			expectedOutcome: OutcomeDropped,
		},
		{
			name:  "missing payer is created from metadata",
			event: subscriptionEvent(t, EventSubscriptionCreated, extID, customer, "active", "PRO_MONTHLY", Metadata{TenantID: "tenant-1"}),
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetPayerByExternalCustomerID(gomock.Any(), customer).Return(nil, storage.ErrNotFound)
				tenantPayer := &types.Payer{ID: "payer-2", Ref: types.TenantParty("tenant-1"), ExternalCustomerID: customer}
				mockStorage.EXPECT().CreatePayer(gomock.Any(), types.TenantParty("tenant-1"), customer).Return(tenantPayer, nil)
				mockStorage.EXPECT().InsertSubscription(gomock.Any(), gomock.Any()).Return(true, nil)
				mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(created, nil)
				mockStorage.EXPECT().AddCoverage(gomock.Any(), "sub-1", tenantPayer.Ref).Return(nil)
			},
			expectedOutcome: OutcomeApplied,
		},
		{
			name:  "missing payer without metadata is dropped",
			event: subscriptionEvent(t, EventSubscriptionCreated, extID, customer, "active", "PRO_MONTHLY", Metadata{}),
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetPayerByExternalCustomerID(gomock.Any(), customer).Return(nil, storage.ErrNotFound)
			},
			expectedOutcome: OutcomeDropped,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, _ := setupService(t)
			tc.setupMocks(mockStorage)

			outcome, err := s.Process(context.Background(), tc.event)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if outcome != tc.expectedOutcome {
				t.Fatalf("expected outcome %q, got %q", tc.expectedOutcome, outcome)
			}
		})
	}
}

func TestService_SubscriptionUpdated(t *testing.T) {
	extID := "sub_ext_1"

	t.Run("overwrites status period and plan", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		mockStorage.EXPECT().UpdateSubscriptionByExternalID(gomock.Any(), extID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, fields map[string]interface{}) error {
				if fields["status"] != types.SubscriptionPastDue {
					t.Errorf("expected past_due, got %v", fields["status"])
				}
				if fields["plan"] != "enterprise" {
					t.Errorf("expected plan enterprise, got %v", fields["plan"])
				}
				return nil
			})

		event := subscriptionEvent(t, EventSubscriptionUpdated, extID, "cus_1", "past_due", "ENTERPRISE_YEARLY", Metadata{})
		outcome, err := s.Process(context.Background(), event)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeApplied {
			t.Fatalf("expected applied, got %q", outcome)
		}
	})

	t.Run("update for unknown subscription is dropped", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		mockStorage.EXPECT().UpdateSubscriptionByExternalID(gomock.Any(), extID, gomock.Any()).Return(storage.ErrNotFound)

		event := subscriptionEvent(t, EventSubscriptionUpdated, extID, "cus_1", "active", "PRO_MONTHLY", Metadata{})
		outcome, err := s.Process(context.Background(), event)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeDropped {
			t.Fatalf("expected dropped, got %q", outcome)
		}
	})

	t.Run("unmapped lookup key keeps the plan and is logged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		mockStorage := NewMockStorageInterface(ctrl)
		mockTracer := NewMockTracingInterface(ctrl)
		mockLogger := NewMockLoggerInterface(ctrl)
		mockMonitor := NewMockMonitorInterface(ctrl)

		mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
		mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
		mockLogger.EXPECT().Warnf("subscription %s: unmapped lookup key %q, keeping existing plan", extID, "LEGACY_TIER")
		mockStorage.EXPECT().UpdateSubscriptionByExternalID(gomock.Any(), extID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, fields map[string]interface{}) error {
				if _, ok := fields["plan"]; ok {
					t.Errorf("expected plan to be left untouched, got %v", fields["plan"])
				}
				return nil
			})

		s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)
		event := subscriptionEvent(t, EventSubscriptionUpdated, extID, "cus_1", "active", "LEGACY_TIER", Metadata{})
		outcome, err := s.Process(context.Background(), event)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeApplied {
			t.Fatalf("expected applied, got %q", outcome)
		}
	})

	t.Run("pause maps the external status directly", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		mockStorage.EXPECT().UpdateSubscriptionByExternalID(gomock.Any(), extID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, fields map[string]interface{}) error {
				if fields["status"] != types.SubscriptionPaused {
					t.Errorf("expected paused, got %v", fields["status"])
				}
				return nil
			})

		event := subscriptionEvent(t, EventSubscriptionPaused, extID, "cus_1", "paused", "PRO_MONTHLY", Metadata{})
		if _, err := s.Process(context.Background(), event); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestService_SubscriptionDeleted(t *testing.T) {
	extID := "sub_ext_1"

	t.Run("marks canceled without deleting", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		mockStorage.EXPECT().UpdateSubscriptionByExternalID(gomock.Any(), extID,
			map[string]interface{}{"status": types.SubscriptionCanceled}).Return(nil)

		event := subscriptionEvent(t, EventSubscriptionDeleted, extID, "cus_1", "canceled", "PRO_MONTHLY", Metadata{})
		outcome, err := s.Process(context.Background(), event)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeApplied {
			t.Fatalf("expected applied, got %q", outcome)
		}
	})
}

func TestService_InvoicePaymentFailed(t *testing.T) {
	extID := "sub_ext_1"
	sub := &types.Subscription{ID: "sub-1", ExternalSubscriptionID: extID, Status: types.SubscriptionActive}

	testCases := []struct {
		name            string
		attempts        int
		setupMocks      func(*MockStorageInterface)
		expectedOutcome Outcome
	}{
		{
			name:     "below threshold records attempts only",
			attempts: 2,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(sub, nil)
				mockStorage.EXPECT().UpdateSubscriptionByExternalID(gomock.Any(), extID,
					map[string]interface{}{"failed_payment_attempts": 2}).Return(nil)
			},
			expectedOutcome: OutcomeApplied,
		},
		{
			name:     "threshold flips to past_due",
			attempts: 3,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(sub, nil)
				mockStorage.EXPECT().UpdateSubscriptionByExternalID(gomock.Any(), extID,
					map[string]interface{}{"failed_payment_attempts": 3, "status": types.SubscriptionPastDue}).Return(nil)
			},
			expectedOutcome: OutcomeApplied,
		},
		{
			name:     "unknown subscription no-ops",
			attempts: 1,
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(nil, storage.ErrNotFound)
			},
			expectedOutcome: OutcomeDropped,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, _ := setupService(t)
			tc.setupMocks(mockStorage)

			outcome, err := s.Process(context.Background(), invoiceEvent(t, EventInvoiceFailed, extID, tc.attempts))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if outcome != tc.expectedOutcome {
				t.Fatalf("expected %q, got %q", tc.expectedOutcome, outcome)
			}
		})
	}
}

func TestService_InvoicePaymentSucceeded(t *testing.T) {
	extID := "sub_ext_1"

	t.Run("past_due restores to active", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		pastDue := &types.Subscription{ID: "sub-1", ExternalSubscriptionID: extID, Status: types.SubscriptionPastDue}
		mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(pastDue, nil)
		mockStorage.EXPECT().UpdateSubscriptionByExternalID(gomock.Any(), extID,
			map[string]interface{}{"status": types.SubscriptionActive, "failed_payment_attempts": 0}).Return(nil)

		outcome, err := s.Process(context.Background(), invoiceEvent(t, EventInvoiceSucceeded, extID, 0))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeApplied {
			t.Fatalf("expected applied, got %q", outcome)
		}
	})

	t.Run("routine renewal on active is a no-op", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		active := &types.Subscription{ID: "sub-1", ExternalSubscriptionID: extID, Status: types.SubscriptionActive}
		mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(active, nil)

		outcome, err := s.Process(context.Background(), invoiceEvent(t, EventInvoiceSucceeded, extID, 0))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeDropped {
			t.Fatalf("expected dropped, got %q", outcome)
		}
	})
}

func TestService_CustomerCreated(t *testing.T) {
	customerEvent := func(md Metadata) *Event {
		raw, _ := json.Marshal(map[string]any{"id": "cus_1", "email": "payer@example.com", "metadata": md})
		return &Event{ID: "evt-3", Type: EventCustomerCreated, Data: EventData{Object: raw}}
	}

	t.Run("creates payer from metadata", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		mockStorage.EXPECT().GetPayerByExternalCustomerID(gomock.Any(), "cus_1").Return(nil, storage.ErrNotFound)
		mockStorage.EXPECT().CreatePayer(gomock.Any(), types.UserParty("user-1"), "cus_1").
			Return(&types.Payer{ID: "payer-1"}, nil)

		outcome, err := s.Process(context.Background(), customerEvent(Metadata{UserID: "user-1"}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeApplied {
			t.Fatalf("expected applied, got %q", outcome)
		}
	})

	t.Run("existing payer drops redelivery", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		mockStorage.EXPECT().GetPayerByExternalCustomerID(gomock.Any(), "cus_1").
			Return(&types.Payer{ID: "payer-1"}, nil)

		outcome, err := s.Process(context.Background(), customerEvent(Metadata{UserID: "user-1"}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeDropped {
			t.Fatalf("expected dropped, got %q", outcome)
		}
	})

	t.Run("concurrent create races to a drop", func(t *testing.T) {
		s, mockStorage, _ := setupService(t)
		mockStorage.EXPECT().GetPayerByExternalCustomerID(gomock.Any(), "cus_1").Return(nil, storage.ErrNotFound)
		mockStorage.EXPECT().CreatePayer(gomock.Any(), types.UserParty("user-1"), "cus_1").
			Return(nil, storage.ErrDuplicateKey)

		outcome, err := s.Process(context.Background(), customerEvent(Metadata{UserID: "user-1"}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeDropped {
			t.Fatalf("expected dropped, got %q", outcome)
		}
	})
}

func TestService_Process_UnhandledType(t *testing.T) {
	s, _, _ := setupService(t)

	outcome, err := s.Process(context.Background(), &Event{ID: "evt-9", Type: "charge.refunded"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome != OutcomeDropped {
		t.Fatalf("expected dropped, got %q", outcome)
	}
}

func TestService_Process_MalformedObject(t *testing.T) {
	s, _, _ := setupService(t)

	event := &Event{ID: "evt-10", Type: EventSubscriptionCreated, Data: EventData{Object: json.RawMessage(`{"customer":"cus_1"}`)}}
	outcome, err := s.Process(context.Background(), event)
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	if outcome != OutcomeDropped {
		t.Fatalf("expected dropped, got %q", outcome)
	}
}

func TestService_DuplicateDelivery(t *testing.T) {
	// The same create delivered twice must produce exactly one insert.
	extID := "sub_ext_dup"
	customer := "cus_dup"
	payer := &types.Payer{ID: "payer-1", Ref: types.UserParty("user-1"), ExternalCustomerID: customer}
	created := &types.Subscription{ID: "sub-1", ExternalSubscriptionID: extID}

	s, mockStorage, _ := setupService(t)

	inserted := false
	mockStorage.EXPECT().GetPayerByExternalCustomerID(gomock.Any(), customer).Return(payer, nil).Times(2)
	mockStorage.EXPECT().InsertSubscription(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *types.Subscription) (bool, error) {
			if inserted {
				return false, nil
			}
			inserted = true
			return true, nil
		}).Times(2)
	mockStorage.EXPECT().GetSubscriptionByExternalID(gomock.Any(), extID).Return(created, nil)
	mockStorage.EXPECT().AddCoverage(gomock.Any(), "sub-1", payer.Ref).Return(nil)

	event := subscriptionEvent(t, EventSubscriptionCreated, extID, customer, "active", "PRO_MONTHLY", Metadata{})

	outcomes := make([]Outcome, 0, 2)
	for i := 0; i < 2; i++ {
		outcome, err := s.Process(context.Background(), event)
		if err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
		outcomes = append(outcomes, outcome)
	}

	if fmt.Sprint(outcomes) != fmt.Sprint([]Outcome{OutcomeApplied, OutcomeDropped}) {
		t.Fatalf("expected [applied dropped], got %v", outcomes)
	}
}
