// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"
)

func TestDebugLogger(t *testing.T) {
	l := NewLogger("DEBUG")
	if l == nil {
		t.Fatal("expected logger")
	}
	if l.Security() == nil {
		t.Error("expected security logger")
	}
}

func TestInvalidLevelFallsBack(t *testing.T) {
	l := NewLogger("invalid")
	if l == nil {
		t.Fatal("expected logger despite invalid level")
	}
}

func TestNoopLogger(t *testing.T) {
	l := NewNoopLogger()
	l.Infof("discarded %s", "message")
	l.Security().SystemStartup()
}
