package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sentryrelay/sentryrelay/pkg/types"
	"github.com/sentryrelay/sentryrelay/server/internal/dispatch"
	"github.com/sentryrelay/sentryrelay/server/internal/metrics"
	"github.com/sentryrelay/sentryrelay/server/internal/transform"
)

const maxBodyBytes = 1 << 20

// Transformer renders a payload as a chat message; ok=false means skip.
type Transformer interface {
	Transform(p types.Payload) (msg transform.Message, ok bool)
}

// Sender delivers one chat message.
type Sender interface {
	Name() string
	Dispatch(ctx context.Context, msg transform.Message) dispatch.Outcome
}

// Handler is the HTTP handler for the relay endpoints.
type Handler struct {
	transformer Transformer
	sender      Sender
	metrics     *metrics.Registry
	mux         *http.ServeMux
}

// New creates a Handler and registers all routes. reg may be nil, in which
// case /metrics is not served.
func New(tr Transformer, s Sender, reg *metrics.Registry) http.Handler {
	h := &Handler{transformer: tr, sender: s, metrics: reg, mux: http.NewServeMux()}

	h.mux.HandleFunc("/sentry-webhook", h.sentryWebhook)
	h.mux.HandleFunc("/health-check", h.healthCheck)
	if reg != nil {
		h.mux.Handle("/metrics", reg)
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// sentryWebhook handles POST /sentry-webhook.
func (h *Handler) sentryWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload, err := types.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		if h.metrics != nil {
			h.metrics.InvalidPayload()
		}
		slog.Warn("api: rejected webhook body", "err", err)
		jsonErr(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	out := h.Relay(r.Context(), payload)
	if h.metrics != nil {
		h.metrics.Observe(out)
	}

	switch out.Status {
	case dispatch.Skipped:
		jsonResp(w, http.StatusOK, messageResponse{Message: skipMessage})
	case dispatch.Delivered:
		jsonResp(w, http.StatusOK, messageResponse{
			Message: fmt.Sprintf("Webhook received and forwarded to %s successfully", h.sender.Name()),
		})
	default:
		jsonResp(w, http.StatusOK, errorResponse{
			Error: fmt.Sprintf("Failed to send message to %s: %s", h.sender.Name(), out.Reason),
		})
	}
}

// Relay runs one payload through the transformer and, unless it is
// filtered out, the sender.
func (h *Handler) Relay(ctx context.Context, p types.Payload) dispatch.Outcome {
	msg, ok := h.transformer.Transform(p)
	if !ok {
		slog.Info("api: event skipped",
			"id", p.ID(),
			"environment", p.Event().Environment(),
		)
		return dispatch.Skip("environment not allowed")
	}

	start := time.Now()
	out := h.sender.Dispatch(ctx, msg)
	if h.metrics != nil {
		h.metrics.ObserveDelivery(time.Since(start))
	}

	if out.Status == dispatch.Failed {
		slog.Info("api: received webhook",
			"id", p.ID(),
			"project", p.ProjectName(),
			"level", p.Level(),
		)
	}
	return out
}

// healthCheck handles GET|HEAD /health-check.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
