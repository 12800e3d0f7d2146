// Package api implements the relay's HTTP surface.
//
// New(transformer, sender, registry) returns an http.Handler that serves:
//
//	POST      /sentry-webhook - relay one Sentry event to the chat webhook
//	GET|HEAD  /health-check   - liveness probe, 204 with no body
//	GET       /metrics        - outcome counters (Prometheus text format)
//
// /sentry-webhook always answers 200 once the body is a valid JSON object:
//
//	{"message": "Environment not allowed. Skipping notification."}
//	{"message": "Webhook received and forwarded to <name> successfully"}
//	{"error":   "Failed to send message to <name>: <reason>"}
//
// Delivery failures are reported in the body; the status stays 200.
// A malformed body gets 400. No external HTTP framework is used.
package api
