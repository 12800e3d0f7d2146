// Package dispatch delivers a transform.Message to the chat webhook and
// classifies the attempt as an Outcome.
//
// Dispatch makes exactly one POST per call. HTTP 200 is Delivered; any other
// status is Failed with the response body as the reason; a transport error
// (refused connection, DNS, timeout, cancelled context) is Failed with the
// error text. Failures are logged and returned as values, never as errors.
package dispatch
