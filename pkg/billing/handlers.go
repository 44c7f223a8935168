// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/entitlement-service/internal/logging"
)

type API struct {
	service ServiceInterface

	webhookSecret string

	logger logging.LoggerInterface
}

func NewAPI(service ServiceInterface, webhookSecret string, logger logging.LoggerInterface) *API {
	return &API{
		service:       service,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/webhooks/billing", a.billingEvent)
}

// billingEvent acks with 200 for both applied and dropped outcomes; only a
// transient processing failure returns 5xx so the transport redelivers.
func (a *API) billingEvent(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(r) {
		a.logger.Security().AuthFailure("billing-webhook")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var event Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&event); err != nil {
		http.Error(w, "Invalid event envelope", http.StatusBadRequest)
		return
	}

	outcome, err := a.service.Process(r.Context(), &event)
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			a.logger.Warnf("rejecting event %s: %v", event.ID, err)
			http.Error(w, "Invalid event payload", http.StatusBadRequest)
			return
		}
		a.logger.Errorf("failed to process event %s: %v", event.ID, err)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"outcome": string(outcome)})
}

func (a *API) authorized(r *http.Request) bool {
	secret := r.Header.Get("X-Webhook-Secret")
	return subtle.ConstantTimeCompare([]byte(secret), []byte(a.webhookSecret)) == 1
}
