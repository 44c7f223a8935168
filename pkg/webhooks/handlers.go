// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/entitlement-service/internal/logging"
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
	mux.Post("/webhooks/registration", a.registration)
	mux.Post("/webhooks/login", a.login)
}

func (a *API) registration(w http.ResponseWriter, r *http.Request) {
	var identity KratosIdentity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		a.logger.Errorf("failed to decode registration payload: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tenant, err := a.service.HandleRegistration(r.Context(), identity.ID, identity.Traits.Email)
	if err != nil {
		a.logger.Errorf("failed to handle registration: %v", err)
		http.Error(w, "Failed to provision workspace", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"tenant_id": tenant.ID})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var event KratosLoginEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		a.logger.Errorf("failed to decode login payload: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := a.service.HandleLogin(r.Context(), event.Identity.ID, event.SessionToken, event.DeviceInfo)
	if err != nil {
		a.logger.Errorf("failed to handle login: %v", err)
		http.Error(w, "Failed to record session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"expires_at": session.ExpiresAt})
}
