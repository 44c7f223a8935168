// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package roles holds the ordered role model. It is pure: no storage, no
// context, no side effects. A missing membership is represented by RoleNone
// and every check on it answers false.
package roles

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

var ErrInvalidRole = errors.New("invalid role")

type Role int

const (
	RoleNone Role = iota
	RoleGuest
	RoleMember
	RoleAdmin
	RoleOwner
)

// Tier maps a role to its authority level, strictly increasing. RoleNone sits
// below every real role.
func (r Role) Tier() int {
	switch r {
	case RoleGuest:
		return 1
	case RoleMember:
		return 2
	case RoleAdmin:
		return 3
	case RoleOwner:
		return 4
	case RoleNone:
		return 0
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleMember, RoleAdmin, RoleOwner:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleMember:
		return "member"
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	default:
		return ""
	}
}

// Parse converts a role string into a Role. Unknown strings are an error,
// never a silent lowest tier.
func Parse(s string) (Role, error) {
	switch s {
	case "guest":
		return RoleGuest, nil
	case "member":
		return RoleMember, nil
	case "admin":
		return RoleAdmin, nil
	case "owner":
		return RoleOwner, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// CanManage reports whether actor may act on target. Equal tiers never manage
// each other, so an admin cannot demote another admin.
func CanManage(actor, target Role) bool {
	if !actor.Valid() || !target.Valid() {
		return false
	}
	return actor.Tier() > target.Tier()
}

// CanInvite reports whether actor may create invites for its tenant.
func CanInvite(actor Role) bool {
	if !actor.Valid() {
		return false
	}
	return actor.Tier() >= RoleAdmin.Tier()
}

// Value implements driver.Valuer so roles are stored as their string form.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: tier %d", ErrInvalidRole, int(r))
	}
	return r.String(), nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}
