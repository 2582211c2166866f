package app

import (
	"github.com/getsentry/sentry-go"
	"github.com/trunov/resizer/internal/config"
	"go.uber.org/zap"
)

// NewLogger builds the JSON production logger at cfg.Level.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}

// InitSentry is a no-op reporter when no DSN is configured.
func InitSentry(cfg *config.SentryConfig, version string) error {
	return sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     version,
	})
}
