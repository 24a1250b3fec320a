package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/common/expfmt"

	"github.com/freshsense/freshsense/pkg/types"
)

func TestObserveResult(t *testing.T) {
	r := New()
	r.ObserveResult(types.Result{
		LEDs:   map[types.Gas]types.Color{types.NH3: types.Red, types.H2S: types.Green},
		Status: types.Spoiled,
	})
	r.ObserveResult(types.Result{
		LEDs:   map[types.Gas]types.Color{types.NH3: types.Green},
		Status: types.Fresh,
	})

	if v := testutil.ToFloat64(r.analyses.WithLabelValues("Spoiled")); v != 1 {
		t.Errorf("analyses{Spoiled}: got %v, want 1", v)
	}
	if v := testutil.ToFloat64(r.analyses.WithLabelValues("Fresh")); v != 1 {
		t.Errorf("analyses{Fresh}: got %v, want 1", v)
	}
	if v := testutil.ToFloat64(r.leds.WithLabelValues("NH3", "Red")); v != 1 {
		t.Errorf("led{NH3,Red}: got %v, want 1", v)
	}
	if v := testutil.ToFloat64(r.leds.WithLabelValues("NH3", "Green")); v != 1 {
		t.Errorf("led{NH3,Green}: got %v, want 1", v)
	}
}

func TestObserveRequest(t *testing.T) {
	r := New()
	r.ObserveRequest("/analyze", 200, 2*time.Millisecond)
	r.ObserveRequest("/analyze", 400, time.Millisecond)
	r.ObserveRequest("/analyze", 200, time.Millisecond)

	if v := testutil.ToFloat64(r.requests.WithLabelValues("/analyze", "200")); v != 2 {
		t.Errorf("requests{/analyze,200}: got %v, want 2", v)
	}
	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Errorf("latency series: got %d, want 1", n)
	}
}

func TestHandler_ExposesFamilies(t *testing.T) {
	r := New()
	r.ObserveResult(types.Result{Status: types.Fresh})

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rr.Body)
	if err != nil {
		t.Fatalf("parse exposition: %v", err)
	}
	mf, ok := mfs[AnalysesTotal]
	if !ok {
		t.Fatalf("%s missing from exposition", AnalysesTotal)
	}
	var fresh float64
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "food_status" && lp.GetValue() == "Fresh" {
				fresh = m.GetCounter().GetValue()
			}
		}
	}
	if fresh != 1 {
		t.Errorf("Fresh count: got %v, want 1", fresh)
	}
	if _, ok := mfs["go_goroutines"]; !ok {
		t.Error("go runtime collector not registered")
	}
}
