// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package entitlements

import (
	"encoding/json"
	"net/http"
	"strconv"

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
	mux.Get("/api/v1/entitlements", a.resolve)
	mux.Get("/api/v1/entitlements/features/{feature}", a.checkFeature)
}

type featureCheckResponse struct {
	Feature string `json:"feature"`
	Allowed bool   `json:"allowed"`
}

// resolve returns the caller's effective plan. The optional tenant_id query
// parameter sets the tenant context for company coverage.
func (a *API) resolve(w http.ResponseWriter, r *http.Request) {
	userID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	resolution, err := a.service.Resolve(r.Context(), userID, r.URL.Query().Get("tenant_id"))
	if err != nil {
		a.logger.Errorf("failed to resolve entitlements: %v", err)
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, resolution)
}

func (a *API) checkFeature(w http.ResponseWriter, r *http.Request) {
	userID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	var usage int64
	if raw := r.URL.Query().Get("usage"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid usage value", http.StatusBadRequest)
			return
		}
		usage = parsed
	}

	feature := chi.URLParam(r, "feature")

	allowed, err := a.service.CheckFeatureLimit(r.Context(), userID, feature, usage, r.URL.Query().Get("tenant_id"))
	if err != nil {
		a.logger.Errorf("failed to check feature limit: %v", err)
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, &featureCheckResponse{
		Feature: feature,
		Allowed: allowed,
	})
}

func (a *API) unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  http.StatusUnauthorized,
		"message": "unauthenticated",
	})
}
