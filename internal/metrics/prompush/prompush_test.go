package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportcache/internal/metrics"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := NewBackend("reportcache", "http://pushgateway.invalid:9091")
	require.NoError(t, err)
	return b
}

// summaryOf reads sample count and sum of one child of a SummaryVec.
func summaryOf(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, v.WithLabelValues(labels...).(prometheus.Metric).Write(m))
	return m.GetSummary().GetSampleCount(), m.GetSummary().GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	_, err := NewBackend("x", "")
	assert.Error(t, err)

	b, err := NewBackend("", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "reportcache", b.jobName)

	b, err = NewBackend("reports-nightly", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "reports-nightly", b.jobName)
}

/*
Every metric the engine emits lands in its own collector under the right
label values; names the backend does not know are dropped.
*/
func TestRouting(t *testing.T) {
	b := newTestBackend(t)
	step := metrics.Labels{"dataset": "nncc", "step": "load", "status": "success"}

	b.IncCounter(metrics.StepTotal, 3, step)
	b.IncCounter(metrics.RecordsTotal, 5, metrics.Labels{"dataset": "nncc", "kind": "loaded"})
	b.IncCounter(metrics.BatchesTotal, 2, metrics.Labels{"sink": "export"})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"foo": "bar"})
	b.ObserveHistogram(metrics.StepDuration, 1.5, step)
	b.ObserveHistogram("other_metric", 2, step)
	b.SetGauge(metrics.DatasetRecords, 40, metrics.Labels{"dataset": "teleco"})
	b.SetGauge(metrics.DatasetRecords, 42, metrics.Labels{"dataset": "teleco"})
	b.SetGauge("other_gauge", 1, nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(b.stepCounter.WithLabelValues("nncc", "load", "success")))
	assert.Equal(t, 5.0, testutil.ToFloat64(b.recordCounter.WithLabelValues("nncc", "loaded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(b.batchCounter.WithLabelValues("export")))
	assert.Equal(t, 42.0, testutil.ToFloat64(b.snapshotSize.WithLabelValues("teleco")))

	count, sum := summaryOf(t, b.stepDuration, "nncc", "load", "success")
	assert.Equal(t, uint64(1), count)
	assert.Equal(t, 1.5, sum)

	n, err := testutil.GatherAndCount(b.reg)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

/*
Flush PUTs the registry to the Pushgateway, grouped under the job name.
*/
func TestFlush(t *testing.T) {
	type push struct {
		method, path, body string
	}
	got := make(chan push, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- push{r.Method, r.URL.Path, string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b, err := NewBackend("reports-job", srv.URL)
	require.NoError(t, err)
	b.SetGauge(metrics.DatasetRecords, 7, metrics.Labels{"dataset": "lecturas"})
	require.NoError(t, b.Flush())

	select {
	case p := <-got:
		assert.Equal(t, http.MethodPut, p.method)
		assert.True(t, strings.Contains(p.path, "reports-job"), p.path)
		assert.NotEmpty(t, p.body)
	default:
		t.Fatal("Flush did not reach the Pushgateway")
	}
}
