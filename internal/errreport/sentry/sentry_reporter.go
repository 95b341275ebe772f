package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"medlens/internal/config"
	"medlens/internal/port"
)

const flushTimeout = 2 * time.Second

type sentryReporter struct {
	hub *sentry.Hub
}

// NewReporter initializes a Sentry client for cfg.DSN.
func NewReporter(cfg *config.SentryConfig, release string) (port.ErrorReporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     release,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	return NewReporterWithHub(sentry.NewHub(client, sentry.NewScope())), nil
}

// NewReporterWithHub wraps an existing hub.
func NewReporterWithHub(hub *sentry.Hub) port.ErrorReporter {
	return &sentryReporter{hub: hub}
}

func (r *sentryReporter) Report(_ context.Context, err error, tags map[string]string) {
	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

func (r *sentryReporter) Flush() {
	r.hub.Flush(flushTimeout)
}
