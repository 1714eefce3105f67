package channel

import (
	"time"

	"github.com/dep2p/go-workerhost/internal/core/metrics"
)

// DefaultShutdownGrace 关闭时等待进行中调用的默认时长
const DefaultShutdownGrace = 2 * time.Second

type options struct {
	metrics       *metrics.Metrics
	shutdownGrace time.Duration
	callTimeout   time.Duration
}

func defaultOptions() options {
	return options{
		shutdownGrace: DefaultShutdownGrace,
	}
}

// Option 通道选项
type Option func(*options)

// WithMetrics 设置指标收集器（nil 表示不收集）
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithShutdownGrace 设置 Server.Close 等待进行中调用的时长
func WithShutdownGrace(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.shutdownGrace = d
		}
	}
}

// WithCallTimeout 设置客户端单次调用超时（0 表示只受 context 约束）
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.callTimeout = d
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
