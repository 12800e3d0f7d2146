// Package types defines the inbound Sentry webhook payload and the null-safe
// accessors used to read it. Every accessor returns a defined default when the
// field is absent or has an unexpected shape; none of them panic.
package types
