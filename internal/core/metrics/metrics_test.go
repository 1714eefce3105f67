package metrics

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-workerhost/pkg/types"
)

func TestMetrics_ObserveCall(t *testing.T) {
	m := New()
	m.ObserveCall("WorkerHost", "Ping", OutcomeOK, time.Millisecond)
	m.ObserveCall("WorkerHost", "Ping", OutcomeOK, time.Millisecond)
	m.ObserveCall("WorkerHost", "Nope", OutcomeRemoteError, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("WorkerHost", "Ping", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("WorkerHost", "Nope", OutcomeRemoteError)))
}

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.WatchdogReset()
	m.WatchdogReset()
	m.Terminated(types.ReasonWatchdogTimeout)
	m.LogSentBytes(10)
	m.LogRecvBytes(4)
	m.LogRecvBytes(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.watchdogResets))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.terminations.WithLabelValues("watchdog_timeout")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.bytes.WithLabelValues(DirectionOut)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.bytes.WithLabelValues(DirectionIn)))
}

func TestMetrics_Inflight(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.CallStarted()
			m.CallFinished()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCall("a", "b", OutcomeOK, 0)
		m.CallStarted()
		m.CallFinished()
		m.LogSentBytes(1)
		m.LogRecvBytes(1)
		m.WatchdogReset()
		m.Terminated(types.ReasonDisposed)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.WatchdogReset()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.watchdogResets))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.watchdogResets))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Terminated(types.ReasonDisposed)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `workerhost_terminations_total{reason="disposed"} 1`), body)
}
