// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package membership

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/authentication"
	"github.com/canonical/entitlement-service/pkg/roles"
)

func setupAPI(t *testing.T) (*API, *MockServiceInterface, *MockLoggerInterface, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockService := NewMockServiceInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	api := NewAPI(mockService, mockLogger)
	mux := chi.NewMux()
	api.RegisterEndpoints(mux)

	return api, mockService, mockLogger, mux
}

func authenticatedRequest(method, target, userID string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	if userID != "" {
		req = req.WithContext(authentication.WithUserID(req.Context(), userID))
	}

	return req
}

func TestAPI_CreateTenant(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		body           any
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface)
		expectedStatus int
	}{
		{
			name:   "success",
			userID: "user-1",
			body:   createTenantRequest{Name: "Acme", Type: "company"},
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().CreateTenant(gomock.Any(), "Acme", types.TenantCompany, "user-1").
					Return(&types.Tenant{ID: "tenant-1", Name: "Acme", Type: types.TenantCompany}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unauthenticated",
			userID:         "",
			body:           createTenantRequest{Name: "Acme"},
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing name",
			userID:         "user-1",
			body:           createTenantRequest{},
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, mockLogger, mux := setupAPI(t)
			tt.setupMocks(mockService, mockLogger)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, authenticatedRequest(http.MethodPost, "/api/v1/tenants", tt.userID, tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAPI_AddMember(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name: "success",
			body: memberRequest{UserID: "user-2", Role: "member"},
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().AddMember(gomock.Any(), "user-1", "tenant-1", "user-2", roles.RoleMember).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown role",
			body:           memberRequest{UserID: "user-2", Role: "superuser"},
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "permission denied",
			body: memberRequest{UserID: "user-2", Role: "admin"},
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().AddMember(gomock.Any(), "user-1", "tenant-1", "user-2", roles.RoleAdmin).
					Return(types.ErrPermissionDenied)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "duplicate member",
			body: memberRequest{UserID: "user-2", Role: "member"},
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().AddMember(gomock.Any(), "user-1", "tenant-1", "user-2", roles.RoleMember).
					Return(types.ErrAlreadyMember)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, _, mux := setupAPI(t)
			tt.setupMocks(mockService)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, authenticatedRequest(http.MethodPost, "/api/v1/tenants/tenant-1/members", "user-1", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAPI_ListMembers(t *testing.T) {
	_, mockService, _, mux := setupAPI(t)

	mockService.EXPECT().ManageableMembers(gomock.Any(), "tenant-1", "user-1").Return([]*ManageableMember{
		{Member: &types.Membership{TenantID: "tenant-1", UserID: "user-1", Role: roles.RoleAdmin}, Manageable: false},
		{Member: &types.Membership{TenantID: "tenant-1", UserID: "user-2", Role: roles.RoleMember}, Manageable: true},
	}, nil)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, authenticatedRequest(http.MethodGet, "/api/v1/tenants/tenant-1/members", "user-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
}

func TestAPI_DeleteTenant(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name: "success",
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().DeleteTenant(gomock.Any(), "user-1", "tenant-1").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "has dependents",
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().DeleteTenant(gomock.Any(), "user-1", "tenant-1").Return(types.ErrTenantHasDependents)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, _, mux := setupAPI(t)
			tt.setupMocks(mockService)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, authenticatedRequest(http.MethodDelete, "/api/v1/tenants/tenant-1", "user-1", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAPI_TransferOwnership(t *testing.T) {
	_, mockService, _, mux := setupAPI(t)

	mockService.EXPECT().TransferOwnership(gomock.Any(), "tenant-1", "user-1", "user-2").Return(nil)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, authenticatedRequest(http.MethodPost, "/api/v1/tenants/tenant-1/transfer", "user-1", transferRequest{ToUserID: "user-2"}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
}
