// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

type KratosIdentity struct {
	ID     string       `json:"id"`
	Traits KratosTraits `json:"traits"`
}

type KratosTraits struct {
	Email string `json:"email"`
}

// KratosLoginEvent is the after-login hook payload. Kratos delivers the
// issued session token alongside the identity it belongs to.
type KratosLoginEvent struct {
	Identity     KratosIdentity `json:"identity"`
	SessionToken string         `json:"session_token"`
	DeviceInfo   string         `json:"device_info"`
}
