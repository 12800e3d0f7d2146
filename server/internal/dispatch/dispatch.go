package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sentryrelay/sentryrelay/server/internal/transform"
)

const (
	// DefaultTimeout bounds a single delivery when none is configured.
	DefaultTimeout = 10 * time.Second

	contentType  = "application/json; charset=UTF-8"
	maxReasonLen = 64 << 10
)

// Dispatcher posts messages to one chat webhook URL.
// It is safe for concurrent use.
type Dispatcher struct {
	name   string
	url    string
	client *http.Client
}

// New creates a Dispatcher for url. name is the human-readable destination
// used in log lines and caller-facing messages. A non-positive timeout falls
// back to DefaultTimeout.
func New(name, url string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the destination name.
func (d *Dispatcher) Name() string { return d.name }

// Dispatch sends msg once and reports how it went.
func (d *Dispatcher) Dispatch(ctx context.Context, msg transform.Message) Outcome {
	out := d.post(ctx, msg)
	if out.Status == Failed {
		slog.Error("dispatch: delivery failed",
			"destination", d.name,
			"target", msg.Target.String(),
			"reason", out.Reason,
		)
		return out
	}
	slog.Debug("dispatch: delivered", "destination", d.name, "target", msg.Target.String())
	return out
}

func (d *Dispatcher) post(ctx context.Context, msg transform.Message) Outcome {
	body, err := json.Marshal(msg)
	if err != nil {
		return failed(fmt.Sprintf("encode message: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return failed(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := d.client.Do(req)
	if err != nil {
		// No response was received; there is no status to inspect.
		return failed(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxReasonLen)) //nolint:errcheck
		return delivered()
	}

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxReasonLen))
	if err != nil {
		return failed(fmt.Sprintf("HTTP %d: read body: %v", resp.StatusCode, err))
	}
	if strings.TrimSpace(string(text)) == "" {
		return failed(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	return failed(string(text))
}
