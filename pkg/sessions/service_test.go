// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package sessions -destination ./mock_sessions.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package sessions -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package sessions -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package sessions -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func setupService(t *testing.T) (*Service, *MockStorageInterface, *MockTracingInterface, *MockLoggerInterface, *MockSecurityLoggerInterface) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockSecurity := NewMockSecurityLoggerInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)

	s := NewService(mockStorage, 0, mockTracer, mockMonitor, mockLogger)
	return s, mockStorage, mockTracer, mockLogger, mockSecurity
}

func expectSpan(mockTracer *MockTracingInterface, name string) {
	mockTracer.EXPECT().Start(gomock.Any(), name).Return(context.Background(), trace.SpanFromContext(context.Background()))
}

func TestService_Create(t *testing.T) {
	s, mockStorage, mockTracer, _, _ := setupService(t)

	expectSpan(mockTracer, "sessions.Service.Create")

	before := time.Now().UTC()
	mockStorage.EXPECT().CreateSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, session *types.Session) (*types.Session, error) {
			if session.Token != "token-1" || session.UserID != "user-1" || session.DeviceInfo != "Firefox on Ubuntu" {
				t.Errorf("unexpected session row: %+v", session)
			}

			wantExpiry := session.CreatedAt.Add(defaultSessionLifetime)
			if !session.ExpiresAt.Equal(wantExpiry) {
				t.Errorf("expected expiry %v, got %v", wantExpiry, session.ExpiresAt)
			}

			if session.CreatedAt.Before(before) || !session.LastActiveAt.Equal(session.CreatedAt) {
				t.Errorf("unexpected timestamps: %+v", session)
			}

			return session, nil
		},
	)

	session, err := s.Create(context.Background(), "user-1", "token-1", "Firefox on Ubuntu")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if session == nil || session.Token != "token-1" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestService_Validate(t *testing.T) {
	now := time.Now().UTC()

	testCases := []struct {
		name          string
		setupMocks    func(*MockStorageInterface)
		expectSession bool
		expectedErr   error
	}{
		{
			name: "live session",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetSessionByToken(gomock.Any(), "token-1").Return(&types.Session{
					Token:     "token-1",
					UserID:    "user-1",
					ExpiresAt: now.Add(time.Hour),
				}, nil)
			},
			expectSession: true,
		},
		{
			name: "unknown token",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetSessionByToken(gomock.Any(), "token-1").Return(nil, storage.ErrNotFound)
			},
		},
		{
			// The expired row stays in place, CleanupExpired owns deletion.
			name: "expired session",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetSessionByToken(gomock.Any(), "token-1").Return(&types.Session{
					Token:     "token-1",
					UserID:    "user-1",
					ExpiresAt: now.Add(-time.Minute),
				}, nil)
			},
		},
		{
			name: "storage failure",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetSessionByToken(gomock.Any(), "token-1").Return(nil, errors.New("connection reset"))
			},
			expectedErr: errors.New("connection reset"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, _, _ := setupService(t)

			expectSpan(mockTracer, "sessions.Service.Validate")
			tc.setupMocks(mockStorage)

			session, err := s.Validate(context.Background(), "token-1")

			if tc.expectedErr != nil {
				if err == nil || err.Error() != tc.expectedErr.Error() {
					t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if tc.expectSession && session == nil {
				t.Fatal("expected a session, got nil")
			}

			if !tc.expectSession && session != nil {
				t.Fatalf("expected nil session, got %+v", session)
			}
		})
	}
}

func TestService_Touch(t *testing.T) {
	testCases := []struct {
		name        string
		setupMocks  func(*MockStorageInterface)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().TouchSession(gomock.Any(), "token-1", gomock.Any()).Return(nil)
			},
		},
		{
			name: "session revoked in the meantime",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().TouchSession(gomock.Any(), "token-1", gomock.Any()).Return(storage.ErrNotFound)
			},
			expectedErr: types.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, _, _ := setupService(t)

			expectSpan(mockTracer, "sessions.Service.Touch")
			tc.setupMocks(mockStorage)

			err := s.Touch(context.Background(), "token-1")

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_Invalidate(t *testing.T) {
	testCases := []struct {
		name        string
		setupMocks  func(*MockStorageInterface)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().DeleteSession(gomock.Any(), "token-1").Return(nil)
			},
		},
		{
			name: "already gone",
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().DeleteSession(gomock.Any(), "token-1").Return(storage.ErrNotFound)
			},
			expectedErr: types.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, _, _ := setupService(t)

			expectSpan(mockTracer, "sessions.Service.Invalidate")
			tc.setupMocks(mockStorage)

			err := s.Invalidate(context.Background(), "token-1")

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_InvalidateAll(t *testing.T) {
	s, mockStorage, mockTracer, mockLogger, mockSecurity := setupService(t)

	expectSpan(mockTracer, "sessions.Service.InvalidateAll")
	mockStorage.EXPECT().DeleteSessionsByUserID(gomock.Any(), "user-1").Return(int64(3), nil)
	mockLogger.EXPECT().Security().Return(mockSecurity)
	mockSecurity.EXPECT().SessionRevoked("user-1", 3)

	count, err := s.InvalidateAll(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if count != 3 {
		t.Fatalf("expected 3 revoked sessions, got %d", count)
	}
}

func TestService_InvalidateAllStorageFailure(t *testing.T) {
	s, mockStorage, mockTracer, _, _ := setupService(t)

	expectSpan(mockTracer, "sessions.Service.InvalidateAll")
	mockStorage.EXPECT().DeleteSessionsByUserID(gomock.Any(), "user-1").Return(int64(0), errors.New("connection reset"))

	if _, err := s.InvalidateAll(context.Background(), "user-1"); err == nil {
		t.Fatal("expected an error, got nil")
	}
}

func TestService_List(t *testing.T) {
	s, mockStorage, mockTracer, _, _ := setupService(t)

	expectSpan(mockTracer, "sessions.Service.List")
	mockStorage.EXPECT().ListSessionsByUserID(gomock.Any(), "user-1").Return([]*types.Session{
		{Token: "token-1", UserID: "user-1"},
		{Token: "token-2", UserID: "user-1"},
	}, nil)

	sessions, err := s.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestService_CleanupExpired(t *testing.T) {
	testCases := []struct {
		name          string
		count         int64
		expectLogging bool
	}{
		{
			name:          "expired rows removed",
			count:         7,
			expectLogging: true,
		},
		{
			name:  "nothing to remove",
			count: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mockStorage, mockTracer, mockLogger, _ := setupService(t)

			expectSpan(mockTracer, "sessions.Service.CleanupExpired")
			mockStorage.EXPECT().DeleteExpiredSessions(gomock.Any(), gomock.Any()).Return(tc.count, nil)
			if tc.expectLogging {
				mockLogger.EXPECT().Infof(gomock.Any(), tc.count)
			}

			count, err := s.CleanupExpired(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if count != tc.count {
				t.Fatalf("expected %d removed sessions, got %d", tc.count, count)
			}
		})
	}
}
