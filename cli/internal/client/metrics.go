package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/freshsense/freshsense/pkg/types"
)

// analysesMetric is the server's counter of completed analyses, labelled by
// food_status.
const analysesMetric = "freshsense_analyses_total"

// AnalysisCounts scrapes /metrics and returns completed analyses per status.
// Both statuses are always present in the result.
func (c *Client) AnalysisCounts(ctx context.Context) (map[types.FoodStatus]float64, error) {
	mfs, err := c.fetchMetrics(ctx)
	if err != nil {
		return nil, err
	}
	out := map[types.FoodStatus]float64{types.Fresh: 0, types.Spoiled: 0}
	for status, v := range sumByLabel(mfs[analysesMetric], "food_status") {
		out[types.FoodStatus(status)] += v
	}
	return out, nil
}

// fetchMetrics performs an HTTP GET on /metrics and returns parsed metric families.
func (c *Client) fetchMetrics(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/metrics"), nil)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: GET /metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return parseMetrics(resp.Body)
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("client: parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumByLabel adds up counter, gauge, or untyped values in mf grouped by the
// value of label. Returns an empty map if mf is nil.
func sumByLabel(mf *dto.MetricFamily, label string) map[string]float64 {
	out := make(map[string]float64)
	if mf == nil {
		return out
	}
	for _, m := range mf.GetMetric() {
		var key string
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label {
				key = lp.GetValue()
				break
			}
		}
		switch {
		case m.Counter != nil:
			out[key] += m.Counter.GetValue()
		case m.Gauge != nil:
			out[key] += m.Gauge.GetValue()
		case m.Untyped != nil:
			out[key] += m.Untyped.GetValue()
		}
	}
	return out
}
