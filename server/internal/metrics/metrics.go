package metrics

import (
	"fmt"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/sentryrelay/sentryrelay/server/internal/dispatch"
)

const (
	webhooksName        = "sentryrelay_webhooks_total"
	invalidPayloadsName = "sentryrelay_invalid_payloads_total"
	deliverySecondsName = "sentryrelay_delivery_duration_seconds_total"
)

// Registry holds the relay's counters.
type Registry struct {
	delivered atomic.Uint64
	skipped   atomic.Uint64
	failed    atomic.Uint64
	invalid   atomic.Uint64

	// float64 bits of accumulated delivery time.
	deliveryBits atomic.Uint64
}

// New returns an empty Registry.
func New() *Registry { return &Registry{} }

// Observe records one terminal outcome.
func (r *Registry) Observe(out dispatch.Outcome) {
	switch out.Status {
	case dispatch.Delivered:
		r.delivered.Add(1)
	case dispatch.Skipped:
		r.skipped.Add(1)
	case dispatch.Failed:
		r.failed.Add(1)
	}
}

// ObserveDelivery adds the wall time of one outbound call.
func (r *Registry) ObserveDelivery(d time.Duration) {
	for {
		old := r.deliveryBits.Load()
		sum := math.Float64frombits(old) + d.Seconds()
		if r.deliveryBits.CompareAndSwap(old, math.Float64bits(sum)) {
			return
		}
	}
}

// InvalidPayload records a request whose body could not be decoded.
func (r *Registry) InvalidPayload() { r.invalid.Add(1) }

// Families returns the current counter values as metric families.
func (r *Registry) Families() []*dto.MetricFamily {
	return []*dto.MetricFamily{
		{
			Name: ptr(webhooksName),
			Help: ptr("Inbound webhooks by terminal outcome."),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{
				outcomeCounter(dispatch.Delivered, r.delivered.Load()),
				outcomeCounter(dispatch.Skipped, r.skipped.Load()),
				outcomeCounter(dispatch.Failed, r.failed.Load()),
			},
		},
		{
			Name:   ptr(invalidPayloadsName),
			Help:   ptr("Inbound webhooks rejected because the body was not a JSON object."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{counter(float64(r.invalid.Load()))},
		},
		{
			Name:   ptr(deliverySecondsName),
			Help:   ptr("Total seconds spent in outbound chat webhook calls."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{counter(math.Float64frombits(r.deliveryBits.Load()))},
		},
	}
}

// ServeHTTP writes the counters in the Prometheus text format.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	w.WriteHeader(http.StatusOK)
	if req.Method == http.MethodHead {
		return
	}
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range r.Families() {
		if err := enc.Encode(mf); err != nil {
			fmt.Fprintf(w, "# encode %s: %v\n", mf.GetName(), err)
			return
		}
	}
}

func outcomeCounter(s dispatch.Status, v uint64) *dto.Metric {
	m := counter(float64(v))
	m.Label = []*dto.LabelPair{{Name: ptr("outcome"), Value: ptr(s.String())}}
	return m
}

func counter(v float64) *dto.Metric {
	return &dto.Metric{Counter: &dto.Counter{Value: ptr(v)}}
}

func ptr[T any](v T) *T { return &v }
