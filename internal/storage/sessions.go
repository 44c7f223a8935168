// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/canonical/entitlement-service/internal/types"
)

func (s *Storage) CreateSession(ctx context.Context, session *types.Session) (*types.Session, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateSession")
	defer span.End()

	var stored types.Session
	err := s.db.Statement(ctx).
		Insert("user_sessions").
		Columns("token", "user_id", "device_info", "expires_at").
		Values(session.Token, session.UserID, session.DeviceInfo, session.ExpiresAt).
		Suffix("RETURNING token, user_id, device_info, created_at, last_active_at, expires_at").
		QueryRowContext(ctx).
		Scan(&stored.Token, &stored.UserID, &stored.DeviceInfo, &stored.CreatedAt, &stored.LastActiveAt, &stored.ExpiresAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", mapConstraintError(err))
	}

	return &stored, nil
}

func (s *Storage) GetSessionByToken(ctx context.Context, token string) (*types.Session, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetSessionByToken")
	defer span.End()

	var session types.Session
	err := s.db.Statement(ctx).
		Select("token", "user_id", "device_info", "created_at", "last_active_at", "expires_at").
		From("user_sessions").
		Where(sq.Eq{"token": token}).
		QueryRowContext(ctx).
		Scan(&session.Token, &session.UserID, &session.DeviceInfo, &session.CreatedAt, &session.LastActiveAt, &session.ExpiresAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// TouchSession bumps last_active_at. A session deleted between issuance and
// this call returns ErrNotFound, it is never recreated.
func (s *Storage) TouchSession(ctx context.Context, token string, at time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.TouchSession")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("user_sessions").
		Set("last_active_at", at).
		Where(sq.Eq{"token": token}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteSession")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("user_sessions").
		Where(sq.Eq{"token": token}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteSessionsByUserID")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("user_sessions").
		Where(sq.Eq{"user_id": userID}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows, nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteExpiredSessions")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("user_sessions").
		Where(sq.Lt{"expires_at": now}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rows, nil
}

func (s *Storage) ListSessionsByUserID(ctx context.Context, userID string) ([]*types.Session, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListSessionsByUserID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("token", "user_id", "device_info", "created_at", "last_active_at", "expires_at").
		From("user_sessions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("last_active_at DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*types.Session
	for rows.Next() {
		var session types.Session
		if err := rows.Scan(&session.Token, &session.UserID, &session.DeviceInfo, &session.CreatedAt, &session.LastActiveAt, &session.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return sessions, nil
}
