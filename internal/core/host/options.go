package host

import (
	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/internal/core/metrics"
	"github.com/dep2p/go-workerhost/internal/core/owner"
	"github.com/dep2p/go-workerhost/internal/core/transport"
	"github.com/dep2p/go-workerhost/pkg/interfaces"
)

// Option Endpoint 构造选项类型
type Option func(*Endpoint)

// WithClock 设置看门狗与所有者轮询使用的时钟
func WithClock(c clock.Clock) Option {
	return func(e *Endpoint) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithProber 设置所有者进程探测器
func WithProber(p owner.Prober) Option {
	return func(e *Endpoint) {
		e.prober = p
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Endpoint) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTransport 添加或替换某一类型的传输
func WithTransport(t interfaces.Transport) Option {
	return func(e *Endpoint) {
		e.extraTransports = append(e.extraTransports, t)
	}
}

// WithTransportSet 设置传输集合
func WithTransportSet(s *transport.Set) Option {
	return func(e *Endpoint) {
		if s != nil {
			e.transports = s
		}
	}
}

// WithPipeDir 设置管道套接字目录（覆盖配置中的 PipeDir）
func WithPipeDir(dir string) Option {
	return func(e *Endpoint) {
		e.cfg.PipeDir = dir
	}
}

// WithService 使用外部构造的宿主控制服务
func WithService(s *hostservice.Service) Option {
	return func(e *Endpoint) {
		if s != nil {
			e.service = s
		}
	}
}
