// Package telemetry initialises the Sentry SDK for the relay's own errors and
// provides HTTP middleware that reports handler panics.
//
// Init must be called once by main before the HTTP server starts. There is
// no package-level guard; calling it twice replaces the client.
package telemetry
