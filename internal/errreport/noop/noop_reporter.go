package noop

import (
	"context"

	"github.com/rs/zerolog"

	"medlens/internal/port"
)

type noopReporter struct {
	log zerolog.Logger
}

// NewReporter creates an ErrorReporter that only logs, for when no error
// tracker is configured.
func NewReporter(log zerolog.Logger) port.ErrorReporter {
	return &noopReporter{log: log.With().Str("component", "error_reporter").Logger()}
}

func (r *noopReporter) Report(_ context.Context, err error, tags map[string]string) {
	ev := r.log.Debug().Err(err)
	for k, v := range tags {
		ev = ev.Str(k, v)
	}
	ev.Msg("[NOOP REPORT] error not forwarded")
}

func (r *noopReporter) Flush() {}
