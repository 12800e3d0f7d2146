// Package metrics counts webhook outcomes and exposes them in the Prometheus
// text exposition format.
//
// Counters:
//
//	sentryrelay_webhooks_total{outcome="delivered|skipped|failed"}
//	sentryrelay_invalid_payloads_total
//	sentryrelay_delivery_duration_seconds_total
//
// Counters are updated with sync/atomic; Registry is safe for concurrent use.
package metrics
