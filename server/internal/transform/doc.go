// Package transform turns a Sentry webhook payload into a chat message.
//
// A Transformer is built once from the allowed environments and the delivery
// target, then shared by all requests:
//   - TextTarget encodes as {"text": ...} (Google Chat, Slack and similar
//     incoming webhooks)
//   - DialogTarget encodes as {"DIALOG_ID": ..., "MESSAGE": ...} (Bitrix24
//     im.message.add webhooks)
//
// Transform returns ok=false when the event environment is not allowed; the
// caller must not deliver anything in that case.
package transform
