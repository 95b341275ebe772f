package port

import "context"

// ErrorReporter forwards diagnostic errors to an external tracker.
type ErrorReporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
	Flush()
}
