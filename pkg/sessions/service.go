// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package sessions keeps the DB-backed session rows that cross-validate
// stateless auth tokens. A token with a good signature is only accepted while
// its session row exists, which is what makes "log out everywhere" work.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/entitlement-service/internal/logging"
	"github.com/canonical/entitlement-service/internal/monitoring"
	"github.com/canonical/entitlement-service/internal/storage"
	"github.com/canonical/entitlement-service/internal/tracing"
	"github.com/canonical/entitlement-service/internal/types"
)

const defaultSessionLifetime = 365 * 24 * time.Hour

type Service struct {
	storage StorageInterface

	sessionLifetime time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	sessionLifetime time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	if sessionLifetime <= 0 {
		sessionLifetime = defaultSessionLifetime
	}

	return &Service{
		storage:         storage,
		sessionLifetime: sessionLifetime,
		tracer:          tracer,
		monitor:         monitor,
		logger:          logger,
	}
}

func (s *Service) Create(ctx context.Context, userID, token, deviceInfo string) (*types.Session, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.Service.Create")
	defer span.End()

	now := time.Now().UTC()
	session := &types.Session{
		Token:        token,
		UserID:       userID,
		DeviceInfo:   deviceInfo,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(s.sessionLifetime),
	}

	created, err := s.storage.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return created, nil
}

// Validate returns the session for a token, or nil when the token has no row
// or the row is past expiry. Expired rows are left for CleanupExpired, a
// validation path should not write.
func (s *Service) Validate(ctx context.Context, token string) (*types.Session, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.Service.Validate")
	defer span.End()

	session, err := s.storage.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, nil
	}

	return session, nil
}

// Touch bumps lastActiveAt. A NotFound here means the session was revoked
// between token issuance and this call; callers must treat that as "session
// invalid", never recreate the row.
func (s *Service) Touch(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "sessions.Service.Touch")
	defer span.End()

	if err := s.storage.TouchSession(ctx, token, time.Now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

func (s *Service) Invalidate(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "sessions.Service.Invalidate")
	defer span.End()

	if err := s.storage.DeleteSession(ctx, token); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to invalidate session: %w", err)
	}

	return nil
}

// InvalidateAll deletes every session for the user, the "log out of all
// devices" path. Outstanding stateless tokens stay structurally valid until
// their own TTL, but fail the session cross-check from here on.
func (s *Service) InvalidateAll(ctx context.Context, userID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.Service.InvalidateAll")
	defer span.End()

	count, err := s.storage.DeleteSessionsByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate sessions: %w", err)
	}

	s.logger.Security().SessionRevoked(userID, int(count))
	return count, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*types.Session, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.Service.List")
	defer span.End()

	return s.storage.ListSessionsByUserID(ctx, userID)
}

// CleanupExpired sweeps rows past expiry. Idempotent, safe to run on a timer.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.Service.CleanupExpired")
	defer span.End()

	count, err := s.storage.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}

	if count > 0 {
		s.logger.Infof("removed %d expired sessions", count)
	}

	return count, nil
}
