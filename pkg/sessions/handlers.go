// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sessions

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httpTypes "github.com/canonical/entitlement-service/internal/http/types"
	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/pkg/authentication"
)

type API struct {
	service ServiceInterface

	logger logging.LoggerInterface
}

func NewAPI(service ServiceInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		logger:  logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v1/sessions", a.list)
	mux.Delete("/api/v1/sessions", a.invalidateAll)
	mux.Delete("/api/v1/sessions/current", a.invalidateCurrent)
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	sessions, err := a.service.List(r.Context(), userID)
	if err != nil {
		a.logger.Errorf("failed to list sessions: %v", err)
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, sessions)
}

// invalidateAll is the "log out of all devices" endpoint.
func (a *API) invalidateAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	count, err := a.service.InvalidateAll(r.Context(), userID)
	if err != nil {
		a.logger.Errorf("failed to invalidate sessions: %v", err)
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, map[string]int64{"revoked": count})
}

// invalidateCurrent logs out the session the request authenticated with.
func (a *API) invalidateCurrent(w http.ResponseWriter, r *http.Request) {
	if _, ok := authentication.GetUserID(r.Context()); !ok {
		a.unauthenticated(w)
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		http.Error(w, "Missing bearer token", http.StatusBadRequest)
		return
	}

	if err := a.service.Invalidate(r.Context(), token); err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, nil)
}

func (a *API) unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  http.StatusUnauthorized,
		"message": "unauthenticated",
	})
}
