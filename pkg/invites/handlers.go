// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invites

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
	mux.Post("/api/v1/tenants/{id}/invites", a.invite)
	mux.Get("/api/v1/invites/{id}", a.getInvite)
	mux.Post("/api/v1/invites/{id}/accept", a.accept)
	mux.Post("/api/v1/invites/{id}/decline", a.decline)
	mux.Delete("/api/v1/invites/{id}", a.revoke)
}

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type inviteResponse struct {
	Invite        *types.Invite `json:"invite,omitempty"`
	DirectlyAdded bool          `json:"directly_added"`
}

func (a *API) invite(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	role, err := roles.Parse(req.Role)
	if err != nil {
		httpTypes.WriteError(w, types.ErrInvalidRole)
		return
	}

	result, err := a.service.Invite(r.Context(), actorID, chi.URLParam(r, "id"), req.Email, role)
	if err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusCreated, &inviteResponse{
		Invite:        result.Invite,
		DirectlyAdded: result.DirectlyAdded,
	})
}

func (a *API) getInvite(w http.ResponseWriter, r *http.Request) {
	invite, err := a.service.GetInvite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, invite)
}

func (a *API) accept(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	invite, err := a.service.Accept(r.Context(), chi.URLParam(r, "id"), actorID)
	if err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, invite)
}

func (a *API) decline(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	if err := a.service.Decline(r.Context(), chi.URLParam(r, "id"), actorID); err != nil {
		httpTypes.WriteError(w, err)
		return
	}

	httpTypes.WriteJSON(w, http.StatusOK, nil)
}

func (a *API) revoke(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authentication.GetUserID(r.Context())
	if !ok {
		a.unauthenticated(w)
		return
	}

	if err := a.service.Revoke(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
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
