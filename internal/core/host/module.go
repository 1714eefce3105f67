package host

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/internal/core/lifecycle"
	"github.com/dep2p/go-workerhost/internal/core/metrics"
	"github.com/dep2p/go-workerhost/internal/core/owner"
	"github.com/dep2p/go-workerhost/internal/core/transport"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config     *config.HostConfig
	Service    *hostservice.Service
	Transports *transport.Set
	Metrics    *metrics.Metrics

	// 可选依赖（测试注入）
	Clock  clock.Clock  `optional:"true"`
	Prober owner.Prober `optional:"true"`
}

// ProvideEndpoint 提供宿主端点
func ProvideEndpoint(input ModuleInput) *Endpoint {
	return New(*input.Config,
		WithService(input.Service),
		WithTransportSet(input.Transports),
		WithMetrics(input.Metrics),
		WithClock(input.Clock),
		WithProber(input.Prober),
	)
}

// Module 返回 Fx 模块
//
// 需要外部提供 *config.HostConfig。OnStart 初始化宿主，OnStop 释放宿主。
func Module() fx.Option {
	return fx.Module("host",
		lifecycle.Module(),
		hostservice.Module,
		transport.Module(),
		metrics.Module,
		fx.Provide(ProvideEndpoint),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput Lifecycle 注册输入
type lifecycleInput struct {
	fx.In

	LC       fx.Lifecycle
	Endpoint *Endpoint
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Endpoint.Initialize(ctx)
		},
		OnStop: func(_ context.Context) error {
			return input.Endpoint.Dispose()
		},
	})
}
