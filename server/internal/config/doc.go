// Package config loads the relay configuration.
//
// Sources, in order of application:
//  1. built-in defaults
//  2. optional YAML file (the -config flag)
//  3. an optional dotenv file (env_file, default "service.env"); variables
//     already present in the process environment win
//  4. environment variables named by the *_env fields
//
// Config fields:
//   - Server.HTTPPort                  - listen port (default 8080)
//   - Destination.URLEnv               - env var with the chat webhook URL (required)
//   - Destination.DialogIDEnv          - env var with the Bitrix24 dialog id (optional)
//   - Destination.Format               - text | dialog; empty selects dialog when a dialog id is set
//   - Filter.AllowedEnvironments       - default [production, prod]
//   - Filter.AllowedEnvironmentsEnv    - comma-separated override
//   - Telemetry.DSNEnv                 - env var with the Sentry DSN (required)
//
// Load returns an error wrapping ErrMissingRequired when the webhook URL or
// the DSN cannot be resolved; the process must not start in that case.
//
// Watch(ctx, path, onChange) reports edits to the YAML file. The running
// process never applies them.
package config
