// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package membership

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpTypes "github.com/canonical/entitlement-service/internal/http/types"
	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/types"
	"github.com/canonical/entitlement-service/pkg/authentication"
	"github.com/canonical/entitlement-service/pkg/roles"
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
	mux.Get("/api/v1/tenants", a.listTenants)
	mux.Post("/api/v1/tenants", a.createTenant)
	mux.Get("/api/v1/tenants/{id}", a.getTenant)
	mux.Patch("/api/v1/tenants/{id}", a.updateTenant)
	mux.Delete("/api/v1/tenants/{id}", a.deleteTenant)

	mux.Get("/api/v1/tenants/{id}/members", a.listMembers)
	mux.Post("/api/v1/tenants/{id}/members", a.addMember)
	mux.Patch("/api/v1/tenants/{id}/members/{userID}", a.updateRole)
	mux.Delete("/api/v1/tenants/{id}/members/{userID}", a.removeMember)
	mux.Post("/api/v1/tenants/{id}/transfer", a.transferOwnership)
}

type createTenantRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type transferRequest struct {
	ToUserID string `json:"to_user_id"`
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	tenants, err := a.service.ListUserTenants(r.Context(), actorID)
	if err != nil {
		a.logger.Errorf("failed to list tenants: %v", err)
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, tenants)
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "Tenant name is required", http.StatusBadRequest)
		return
	}

	tenantType := types.TenantType(req.Type)
	if tenantType == "" {
		tenantType = types.TenantCompany
	}

	tenant, err := a.service.CreateTenant(r.Context(), req.Name, tenantType, actorID)
	if err != nil {
		a.logger.Errorf("failed to create tenant: %v", err)
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusCreated, tenant)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := a.service.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, tenant)
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tenant := &types.Tenant{ID: chi.URLParam(r, "id"), Name: req.Name}

	updated, err := a.service.UpdateTenant(r.Context(), actorID, tenant, []string{"name"})
	if err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, updated)
}

func (a *API) deleteTenant(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	if err := a.service.DeleteTenant(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, nil)
}

// listMembers returns the member list annotated with whether the caller can
// manage each entry, so clients can render controls without recomputing the
// role lattice.
func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	members, err := a.service.ManageableMembers(r.Context(), chi.URLParam(r, "id"), actorID)
	if err != nil {
		a.logger.Errorf("failed to list members: %v", err)
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, members)
}

func (a *API) addMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role, err := roles.Parse(req.Role)
	if err != nil {
		httpTypes.WriteError(w, types.ErrInvalidRole)
		return
	}

	if err := a.service.AddMember(r.Context(), actorID, chi.URLParam(r, "id"), req.UserID, role); err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusCreated, nil)
}

func (a *API) updateRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role, err := roles.Parse(req.Role)
	if err != nil {
		httpTypes.WriteError(w, types.ErrInvalidRole)
		return
	}

	if err := a.service.UpdateRole(r.Context(), actorID, chi.URLParam(r, "id"), chi.URLParam(r, "userID"), role); err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, nil)
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	if err := a.service.RemoveMember(r.Context(), actorID, chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, nil)
}

func (a *API) transferOwnership(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.service.TransferOwnership(r.Context(), chi.URLParam(r, "id"), actorID, req.ToUserID); err != nil {
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
