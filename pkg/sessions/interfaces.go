// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sessions

import (
	"context"
	"time"

	"github.com/canonical/entitlement-service/internal/types"
)

type ServiceInterface interface {
	Create(ctx context.Context, userID, token, deviceInfo string) (*types.Session, error)
	Validate(ctx context.Context, token string) (*types.Session, error)
	Touch(ctx context.Context, token string) error
	Invalidate(ctx context.Context, token string) error
	InvalidateAll(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, userID string) ([]*types.Session, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// StorageInterface is the subset of the storage layer the sessions package
// depends on.
type StorageInterface interface {
	CreateSession(ctx context.Context, session *types.Session) (*types.Session, error)
	GetSessionByToken(ctx context.Context, token string) (*types.Session, error)
	TouchSession(ctx context.Context, token string, at time.Time) error
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	ListSessionsByUserID(ctx context.Context, userID string) ([]*types.Session, error)
}
