// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface covers the structured security event channel. Events
// land on a dedicated logger so they can be shipped to an audit sink separately
// from application logs.
type SecurityLoggerInterface interface {
	SystemStartup()
	SystemShutdown()
	AuthSuccess(subject string)
	AuthFailure(subject string)
	AuthzFailure(subject, permission string)
	SessionRevoked(subject string, count int)
}
