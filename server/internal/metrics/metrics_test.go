package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/sentryrelay/sentryrelay/server/internal/dispatch"
)

func scrape(t *testing.T, r *Registry) map[string]*dto.MetricFamily {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rr.Body)
	if err != nil {
		t.Fatalf("parse exposition: %v", err)
	}
	return mfs
}

func outcomeValue(mf *dto.MetricFamily, outcome string) float64 {
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "outcome" && l.GetValue() == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func TestRegistry_Empty(t *testing.T) {
	mfs := scrape(t, New())
	mf := mfs[webhooksName]
	if mf == nil {
		t.Fatalf("%s missing from exposition", webhooksName)
	}
	for _, o := range []string{"delivered", "skipped", "failed"} {
		if v := outcomeValue(mf, o); v != 0 {
			t.Errorf("%s: got %v, want 0", o, v)
		}
	}
}

func TestRegistry_CountsOutcomes(t *testing.T) {
	r := New()
	r.Observe(dispatch.Outcome{Status: dispatch.Delivered})
	r.Observe(dispatch.Outcome{Status: dispatch.Delivered})
	r.Observe(dispatch.Skip("env"))
	r.Observe(dispatch.Outcome{Status: dispatch.Failed, Reason: "boom"})
	r.InvalidPayload()
	r.ObserveDelivery(1500 * time.Millisecond)
	r.ObserveDelivery(500 * time.Millisecond)

	mfs := scrape(t, r)
	mf := mfs[webhooksName]
	if v := outcomeValue(mf, "delivered"); v != 2 {
		t.Errorf("delivered: got %v, want 2", v)
	}
	if v := outcomeValue(mf, "skipped"); v != 1 {
		t.Errorf("skipped: got %v, want 1", v)
	}
	if v := outcomeValue(mf, "failed"); v != 1 {
		t.Errorf("failed: got %v, want 1", v)
	}
	if v := mfs[invalidPayloadsName].GetMetric()[0].GetCounter().GetValue(); v != 1 {
		t.Errorf("invalid payloads: got %v, want 1", v)
	}
	if v := mfs[deliverySecondsName].GetMetric()[0].GetCounter().GetValue(); v != 2 {
		t.Errorf("delivery seconds: got %v, want 2", v)
	}
}

func TestRegistry_ConcurrentObserve(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Observe(dispatch.Outcome{Status: dispatch.Delivered})
			r.ObserveDelivery(time.Millisecond)
		}()
	}
	wg.Wait()

	if v := outcomeValue(scrape(t, r)[webhooksName], "delivered"); v != 50 {
		t.Errorf("delivered: got %v, want 50", v)
	}
}

func TestRegistry_MethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	New().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}
