// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
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
	"github.com/canonical/entitlement-service/pkg/invites"
	"github.com/canonical/entitlement-service/pkg/sessions"
)

// sweepCmd runs the expiry sweeps once and exits, intended for a cron job or
// a Kubernetes CronJob.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired invites and sessions",
	Long:  `Delete invite rows past their expiry and session rows past their TTL, then exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := sweep(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func sweep(ctx context.Context) error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
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

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	inviteCount, err := invites.NewService(s, identityClient, specs.InviteLifetime, tracer, monitor, logger).SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("invite sweep failed: %w", err)
	}

	sessionCount, err := sessions.NewService(s, specs.SessionLifetime, tracer, monitor, logger).CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("session sweep failed: %w", err)
	}

	logger.Infof("sweep complete: %d invites, %d sessions removed", inviteCount, sessionCount)
	return nil
}
