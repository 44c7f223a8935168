// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
)

// Domain sentinel errors. Services return these (or wrap them) so callers can
// branch with errors.Is and the HTTP layer can map them to stable codes.
var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyMember       = errors.New("already a member")
	ErrAlreadyInvited      = errors.New("already invited")
	ErrInvalidRole         = errors.New("invalid role")
	ErrTenantHasDependents = errors.New("tenant has dependent records")
	ErrUnknownPlan         = errors.New("unknown plan lookup key")
	ErrInviteExpired       = errors.New("invite expired")
	ErrEmailMismatch       = errors.New("email mismatch")
)

// ErrorCode returns the stable wire code for a domain error, or "internal"
// when the error is not part of the taxonomy.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, ErrAlreadyInvited):
		return "already_invited"
	case errors.Is(err, ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, ErrTenantHasDependents):
		return "tenant_has_dependents"
	case errors.Is(err, ErrUnknownPlan):
		return "unknown_plan"
	case errors.Is(err, ErrInviteExpired):
		return "invite_expired"
	case errors.Is(err, ErrEmailMismatch):
		return "email_mismatch"
	default:
		return "internal"
	}
}
