// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package types carries the JSON envelope shared by every HTTP endpoint and
// the mapping from domain errors to HTTP status codes.
package types

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canonical/entitlement-service/internal/types"
)

type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFromError maps a domain error to the HTTP status the API returns for
// it. Anything outside the taxonomy is an internal error.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrPermissionDenied), errors.Is(err, types.ErrEmailMismatch):
		return http.StatusForbidden
	case errors.Is(err, types.ErrAlreadyMember), errors.Is(err, types.ErrAlreadyInvited), errors.Is(err, types.ErrTenantHasDependents):
		return http.StatusConflict
	case errors.Is(err, types.ErrInvalidRole), errors.Is(err, types.ErrUnknownPlan):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInviteExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(&Response{Status: status, Data: data})
}

// WriteError renders a domain error with its mapped status. Internal errors
// are masked, the detail stays in the logs.
func WriteError(w http.ResponseWriter, err error) error {
	status := StatusFromError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(&ErrorResponse{
		Status:  status,
		Code:    types.ErrorCode(err),
		Message: message,
	})
}
