// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a production zap logger at the given level. Unknown level
// strings fall back to error.
func NewLogger(level string) *Logger {
	zapLevel, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		zapLevel = zapcore.ErrorLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &Logger{
		SugaredLogger: logger.Sugar(),
		security:      &SecurityLogger{l: logger.Named("security")},
	}
}

// SecurityLogger emits audit-relevant events with a stable schema.
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Info("system startup", zap.String("event", "system.startup"))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Info("system shutdown", zap.String("event", "system.shutdown"))
}

func (s *SecurityLogger) AuthSuccess(subject string) {
	s.l.Info("authentication succeeded",
		zap.String("event", "auth.success"),
		zap.String("subject", subject),
	)
}

func (s *SecurityLogger) AuthFailure(subject string) {
	s.l.Warn("authentication failed",
		zap.String("event", "auth.failure"),
		zap.String("subject", subject),
	)
}

func (s *SecurityLogger) AuthzFailure(subject, permission string) {
	s.l.Warn("authorization denied",
		zap.String("event", "authz.failure"),
		zap.String("subject", subject),
		zap.String("permission", permission),
	)
}

func (s *SecurityLogger) SessionRevoked(subject string, count int) {
	s.l.Info("sessions revoked",
		zap.String("event", "session.revoked"),
		zap.String("subject", subject),
		zap.Int("count", count),
	)
}
