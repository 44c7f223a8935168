// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/canonical/entitlement-service/internal/types"
)

type ProviderInterface interface {
	// Verifier returns the token verifier associated with the specified OIDC issuer
	Verifier(*oidc.Config) *oidc.IDTokenVerifier
}

type TokenVerifierInterface interface {
	// VerifyToken verifies a raw JWT string and validates authorization claims
	// Returns the subject (user ID) if the token is valid and authorized, otherwise an error
	VerifyToken(ctx context.Context, rawToken string) (string, error)
}

// SessionValidatorInterface cross-checks a structurally valid token against
// the session store. A verified token whose session row is gone has been
// revoked and must not authenticate.
type SessionValidatorInterface interface {
	Validate(ctx context.Context, token string) (*types.Session, error)
	Touch(ctx context.Context, token string) error
}
