// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/entitlement-service/internal/db"
	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring"
	"github.com/canonical/entitlement-service/internal/tracing"
	"github.com/canonical/entitlement-service/pkg/authentication"
	"github.com/canonical/entitlement-service/pkg/billing"
	"github.com/canonical/entitlement-service/pkg/entitlements"
	"github.com/canonical/entitlement-service/pkg/invites"
	"github.com/canonical/entitlement-service/pkg/membership"
	"github.com/canonical/entitlement-service/pkg/metrics"
	"github.com/canonical/entitlement-service/pkg/sessions"
	"github.com/canonical/entitlement-service/pkg/status"
	"github.com/canonical/entitlement-service/pkg/webhooks"
)

func NewRouter(
	membershipAPI *membership.API,
	invitesAPI *invites.API,
	entitlementsAPI *entitlements.API,
	sessionsAPI *sessions.API,
	billingAPI *billing.API,
	webhooksAPI *webhooks.API,
	authMiddleware *authentication.Middleware,
	dbClient db.DBClientInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
		db.TransactionMiddleware(dbClient, logger),
	)

	router.Use(middlewares...)

	// Unauthenticated surface: operational endpoints and inbound webhooks,
	// which carry their own shared-secret check.
	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(tracer, monitor, logger).RegisterEndpoints(router)
	billingAPI.RegisterEndpoints(router)
	webhooksAPI.RegisterEndpoints(router)

	// Everything under /api/v1 outside the operational surface requires a
	// bearer token backed by a live session.
	apiRouter := chi.NewMux()
	apiRouter.Use(authMiddleware.Authenticate())
	membershipAPI.RegisterEndpoints(apiRouter)
	invitesAPI.RegisterEndpoints(apiRouter)
	entitlementsAPI.RegisterEndpoints(apiRouter)
	sessionsAPI.RegisterEndpoints(apiRouter)

	router.Mount("/", apiRouter)

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
