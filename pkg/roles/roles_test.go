// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package roles

import (
	"errors"
	"testing"
)

func TestTierOrdering(t *testing.T) {
	ordered := []Role{RoleNone, RoleGuest, RoleMember, RoleAdmin, RoleOwner}

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Tier() <= ordered[i-1].Tier() {
			t.Errorf("expected %s tier > %s tier", ordered[i], ordered[i-1])
		}
	}
}

func TestCanManageMatchesTierComparison(t *testing.T) {
	all := []Role{RoleGuest, RoleMember, RoleAdmin, RoleOwner}

	for _, a := range all {
		for _, b := range all {
			want := a.Tier() > b.Tier()
			if got := CanManage(a, b); got != want {
				t.Errorf("CanManage(%s, %s) = %v, want %v", a, b, got, want)
			}
		}
	}
}

func TestCanManageReflexiveIsFalse(t *testing.T) {
	for _, r := range []Role{RoleGuest, RoleMember, RoleAdmin, RoleOwner} {
		if CanManage(r, r) {
			t.Errorf("CanManage(%s, %s) should be false", r, r)
		}
	}
}

func TestMissingRoleChecksAreFalse(t *testing.T) {
	if CanManage(RoleNone, RoleGuest) {
		t.Error("RoleNone should not manage anyone")
	}
	if CanManage(RoleOwner, RoleNone) {
		t.Error("checks against RoleNone targets should be false")
	}
	if CanInvite(RoleNone) {
		t.Error("RoleNone should not invite")
	}
}

func TestCanInvite(t *testing.T) {
	testCases := []struct {
		role Role
		want bool
	}{
		{RoleGuest, false},
		{RoleMember, false},
		{RoleAdmin, true},
		{RoleOwner, true},
	}

	for _, tc := range testCases {
		if got := CanInvite(tc.role); got != tc.want {
			t.Errorf("CanInvite(%s) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	for _, s := range []string{"guest", "member", "admin", "owner"} {
		r, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", s, err)
		}
		if r.String() != s {
			t.Errorf("Parse(%q).String() = %q", s, r.String())
		}
	}

	if _, err := Parse("superuser"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := Parse(""); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole for empty string, got %v", err)
	}
}

func TestScanRoundTrip(t *testing.T) {
	var r Role
	if err := r.Scan("admin"); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if r != RoleAdmin {
		t.Errorf("expected RoleAdmin, got %v", r)
	}

	v, err := RoleAdmin.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != "admin" {
		t.Errorf("expected \"admin\", got %v", v)
	}

	if _, err := RoleNone.Value(); err == nil {
		t.Error("expected error valuing RoleNone")
	}

	if err := r.Scan("nope"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole scanning unknown role, got %v", err)
	}
}
