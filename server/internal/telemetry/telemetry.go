package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

// Options configures the Sentry client.
type Options struct {
	DSN                string
	Environment        string
	Release            string
	TracesSampleRate   float64
	ProfilesSampleRate float64
}

// Init configures the global Sentry hub from opts.
func Init(opts Options) error {
	if opts.DSN == "" {
		return fmt.Errorf("telemetry: dsn is required")
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:                opts.DSN,
		Environment:        opts.Environment,
		Release:            opts.Release,
		EnableTracing:      opts.TracesSampleRate > 0,
		TracesSampleRate:   opts.TracesSampleRate,
		ProfilesSampleRate: opts.ProfilesSampleRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry: init sentry: %w", err)
	}
	return nil
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// Middleware wraps next so each request gets its own Sentry hub and panics
// are reported before being re-raised to net/http.
func Middleware(next http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	}).Handle(next)
}
