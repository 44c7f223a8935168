// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/entitlement-service/internal/types"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{types.ErrNotFound, http.StatusNotFound},
		{types.ErrPermissionDenied, http.StatusForbidden},
		{types.ErrEmailMismatch, http.StatusForbidden},
		{types.ErrAlreadyMember, http.StatusConflict},
		{types.ErrAlreadyInvited, http.StatusConflict},
		{types.ErrTenantHasDependents, http.StatusConflict},
		{types.ErrInvalidRole, http.StatusBadRequest},
		{types.ErrUnknownPlan, http.StatusBadRequest},
		{types.ErrInviteExpired, http.StatusGone},
		{fmt.Errorf("wrapped: %w", types.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.err.Error(), func(t *testing.T) {
			if got := StatusFromError(test.err); got != test.expected {
				t.Errorf("expected status %d, got %d", test.expected, got)
			}
		})
	}
}

func TestWriteErrorMasksInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()

	if err := WriteError(w, errors.New("pq: connection refused")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Message != "internal server error" {
		t.Errorf("expected masked message, got %q", resp.Message)
	}

	if resp.Code != "internal" {
		t.Errorf("expected code internal, got %q", resp.Code)
	}
}

func TestWriteErrorDomainError(t *testing.T) {
	w := httptest.NewRecorder()

	if err := WriteError(w, types.ErrPermissionDenied); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Code != "permission_denied" {
		t.Errorf("expected code permission_denied, got %q", resp.Code)
	}
}
