// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/entitlement-service/internal/config"
	"github.com/canonical/entitlement-service/internal/db"
	"github.com/canonical/entitlement-service/internal/identity"
	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring/prometheus"
	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/tracing"
	"github.com/canonical/entitlement-service/pkg/authentication"
	"github.com/canonical/entitlement-service/pkg/billing"
	"github.com/canonical/entitlement-service/pkg/entitlements"
	"github.com/canonical/entitlement-service/pkg/invites"
	"github.com/canonical/entitlement-service/pkg/membership"
	"github.com/canonical/entitlement-service/pkg/sessions"
	"github.com/canonical/entitlement-service/pkg/web"
	"github.com/canonical/entitlement-service/pkg/webhooks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("entitlement-service", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	identityClient := identity.NewClient(specs.KratosAdminURL, tracer, monitor, logger)

	membershipService := membership.NewService(s, specs.MemberCheckConcurrency, tracer, monitor, logger)
	inviteService := invites.NewService(s, identityClient, specs.InviteLifetime, tracer, monitor, logger)
	entitlementService := entitlements.NewService(s, tracer, monitor, logger)
	billingService := billing.NewService(s, tracer, monitor, logger)
	sessionService := sessions.NewService(s, specs.SessionLifetime, tracer, monitor, logger)
	webhookService := webhooks.NewService(s, sessionService, tracer, monitor, logger)

	var verifier authentication.TokenVerifierInterface
	if specs.OIDCIssuer != "" {
		verifier, err = authentication.NewJWTAuthenticator(
			context.Background(),
			specs.OIDCIssuer,
			specs.OIDCJWKSURL,
			specs.AllowedSubjects,
			specs.RequiredScope,
			tracer,
			monitor,
			logger,
		)
		if err != nil {
			return fmt.Errorf("failed to set up JWT authentication: %v", err)
		}
	} else {
		verifier = authentication.NewNoopVerifier()
		logger.Warn("OIDC issuer not configured, using noop token verifier")
	}

	authMiddleware := authentication.NewMiddleware(verifier, sessionService, tracer, monitor, logger)

	router := web.NewRouter(
		membership.NewAPI(membershipService, logger),
		invites.NewAPI(inviteService, logger),
		entitlements.NewAPI(entitlementService, logger),
		sessions.NewAPI(sessionService, logger),
		billing.NewAPI(billingService, specs.BillingWebhookSecret, logger),
		webhooks.NewAPI(webhookService, logger),
		authMiddleware,
		dbClient,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}
