package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-workerhost/pkg/types"
)

const namespace = "workerhost"

// 调用结果标签
const (
	OutcomeOK          = "ok"
	OutcomeRemoteError = "remote_error"
	OutcomeBadRequest  = "bad_request"
)

// 字节方向标签
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Metrics 宿主指标集合
type Metrics struct {
	registry *prometheus.Registry

	calls          *prometheus.CounterVec
	callDuration   *prometheus.HistogramVec
	inflight       prometheus.Gauge
	bytes          *prometheus.CounterVec
	watchdogResets prometheus.Counter
	terminations   *prometheus.CounterVec
}

// New 创建指标集合并注册到新的 Registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Number of RPC calls dispatched, by outcome.",
		}, []string{"service", "method", "outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Time spent dispatching RPC calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"service", "method"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "inflight",
			Help:      "Number of RPC calls currently being dispatched.",
		}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "bytes_total",
			Help:      "Framed bytes moved over the channel.",
		}, []string{"direction"}),
		watchdogResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watchdog",
			Name:      "resets_total",
			Help:      "Number of liveness pings that reset the watchdog.",
		}),
		terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terminations_total",
			Help:      "Host terminations, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.calls,
		m.callDuration,
		m.inflight,
		m.bytes,
		m.watchdogResets,
		m.terminations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ============================================================================
//                              记录方法
// ============================================================================

// ObserveCall 记录一次调用
func (m *Metrics) ObserveCall(service, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(service, method, outcome).Inc()
	m.callDuration.WithLabelValues(service, method).Observe(d.Seconds())
}

// CallStarted 调用开始
func (m *Metrics) CallStarted() {
	if m == nil {
		return
	}
	m.inflight.Inc()
}

// CallFinished 调用结束
func (m *Metrics) CallFinished() {
	if m == nil {
		return
	}
	m.inflight.Dec()
}

// LogSentBytes 记录发送字节
func (m *Metrics) LogSentBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytes.WithLabelValues(DirectionOut).Add(float64(n))
}

// LogRecvBytes 记录接收字节
func (m *Metrics) LogRecvBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytes.WithLabelValues(DirectionIn).Add(float64(n))
}

// WatchdogReset 记录一次看门狗重置
func (m *Metrics) WatchdogReset() {
	if m == nil {
		return
	}
	m.watchdogResets.Inc()
}

// Terminated 记录宿主终止原因
func (m *Metrics) Terminated(reason types.TerminationReason) {
	if m == nil {
		return
	}
	m.terminations.WithLabelValues(reason.String()).Inc()
}

// ============================================================================
//                              导出
// ============================================================================

// Registry 返回底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 返回 /metrics HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
