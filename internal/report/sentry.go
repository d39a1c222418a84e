package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// SetupSentry initializes the global Sentry client. An empty DSN leaves
// reporting disabled without failing.
func SetupSentry(dsn, environment, release string) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// FlushSentry waits for buffered events to be delivered.
func FlushSentry() {
	sentry.Flush(flushTimeout)
}
