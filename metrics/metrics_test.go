package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAreIndependentPerInstance(t *testing.T) {
	a, b := New(), New()

	a.ScoreSubmissions.WithLabelValues("ok").Inc()
	a.ScoreSubmissions.WithLabelValues("ok").Inc()

	assert.Equal(t, 2.0, counterValue(t, a, "ok"))
	assert.Equal(t, 0.0, counterValue(t, b, "ok"))
}

func counterValue(t *testing.T, m *Metrics, result string) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.ScoreSubmissions.WithLabelValues(result).Write(&out))
	return out.GetCounter().GetValue()
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.BracketAnomalies.WithLabelValues("duplicate_match_id").Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bracket_console_bracket_data_anomalies_total{kind="duplicate_match_id"} 1`)
}
