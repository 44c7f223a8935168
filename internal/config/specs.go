// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	KratosAdminURL string `envconfig:"kratos_admin_url" required:"true"`

	OIDCIssuer      string   `envconfig:"oidc_issuer"`
	OIDCJWKSURL     string   `envconfig:"oidc_jwks_url"`
	AllowedSubjects []string `envconfig:"allowed_subjects"`
	RequiredScope   string   `envconfig:"required_scope"`

	BillingWebhookSecret string `envconfig:"billing_webhook_secret" required:"true"`

	InviteLifetime  time.Duration `envconfig:"invite_lifetime" default:"168h"`
	SessionLifetime time.Duration `envconfig:"session_lifetime" default:"8760h"`

	MemberCheckConcurrency int `envconfig:"member_check_concurrency" default:"8"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
}
