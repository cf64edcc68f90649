package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementResolution("cached")
		m.IncrementBiographyChunk(false)
		m.AddJobsQueued("email", "global", 2)
		m.IncrementDelivery("message", "delivered")
		m.SetOutboxSize(3)
		m.ObserveRun("ok", time.Second, time.Now())
	})
}

func TestCounters(t *testing.T) {
	m := New()

	m.IncrementResolution("cached")
	m.IncrementResolution("cached")
	m.IncrementBiographyChunk(false)
	m.AddJobsQueued("email", "team", 3)
	m.AddJobsQueued("email", "team", 0)
	m.ObserveRun("ok", 2*time.Second, time.Unix(1700000000, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("cached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BiographyChunks.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.JobsQueued.WithLabelValues("email", "team")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastSuccess))
}

func TestNewUsesDedicatedRegistry(t *testing.T) {
	// Two instances must not collide on the default registry.
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

func TestPush(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New()
	m.SetOutboxSize(4)
	require.NoError(t, m.Push(context.Background(), srv.URL, "fantamorto", "cron"))
	assert.Equal(t, "/metrics/job/fantamorto/instance/cron", path)
	assert.NotEmpty(t, body)

	var nilMetrics *Metrics
	assert.NoError(t, nilMetrics.Push(context.Background(), srv.URL, "fantamorto", ""))
	assert.NoError(t, m.Push(context.Background(), "", "fantamorto", ""), "no gateway configured")
}

func TestPushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New().Push(context.Background(), srv.URL, "fantamorto", "")
	assert.ErrorContains(t, err, "push metrics")
}
