package host

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/channel"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/internal/core/metrics"
	"github.com/dep2p/go-workerhost/internal/core/owner"
	"github.com/dep2p/go-workerhost/internal/core/transport"
	"github.com/dep2p/go-workerhost/internal/core/watchdog"
	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("core/host")

// Endpoint 宿主端点
//
// Endpoint 独占通道、看门狗与所有者监控，进入 stopped 后统一释放。
type Endpoint struct {
	cfg config.HostConfig

	clock           clock.Clock
	prober          owner.Prober
	metrics         *metrics.Metrics
	transports      *transport.Set
	extraTransports []interfaces.Transport

	service  *hostservice.Service
	watchdog *watchdog.Watchdog
	owner    *owner.Monitor

	initMu      sync.Mutex
	initialized atomic.Bool
	server      *channel.Server
	metricsLn   net.Listener
	metricsSrv  *http.Server

	released    atomic.Bool
	releaseOnce sync.Once
	releaseErr  error
}

// New 创建宿主端点
func New(cfg config.HostConfig, opts ...Option) *Endpoint {
	e := &Endpoint{
		cfg:   cfg,
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.metrics == nil {
		e.metrics = metrics.New()
	}
	if e.service == nil {
		e.service = hostservice.New(nil)
	}
	if e.transports == nil {
		e.transports = transport.NewSet(transport.ConfigFromHost(&e.cfg))
	}
	for _, t := range e.extraTransports {
		e.transports.Add(t)
	}

	e.watchdog = watchdog.New(e.onWatchdogExpired, watchdog.WithClock(e.clock))
	e.owner = owner.New(e.onOwnerExited,
		owner.WithClock(e.clock),
		owner.WithPollInterval(e.cfg.OwnerPollInterval.Duration()),
		owner.WithProber(e.prober),
	)
	e.service.OnPing(e.onPing)
	return e
}

// ============================================================================
//                              触发源
// ============================================================================

func (e *Endpoint) onPing() {
	if e.watchdog.Reset() {
		e.metrics.WatchdogReset()
	}
}

func (e *Endpoint) onWatchdogExpired() {
	e.service.RequestShutdown(types.ReasonWatchdogTimeout)
}

func (e *Endpoint) onOwnerExited() {
	e.service.RequestShutdown(types.ReasonDisowned)
}

// ============================================================================
//                              访问器
// ============================================================================

// Config 返回宿主配置
func (e *Endpoint) Config() config.HostConfig {
	return e.cfg
}

// Addr 返回实际绑定地址；未初始化时返回配置地址
func (e *Endpoint) Addr() types.Address {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.server != nil {
		return e.server.Addr()
	}
	return e.cfg.Address()
}

// MetricsAddr 返回指标 HTTP 实际监听地址，未开启时为空
func (e *Endpoint) MetricsAddr() string {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.metricsLn == nil {
		return ""
	}
	return e.metricsLn.Addr().String()
}

// Reason 返回终止原因，尚未终止时为 ReasonNone
func (e *Endpoint) Reason() types.TerminationReason {
	return e.service.Reason()
}

// State 返回宿主状态
func (e *Endpoint) State() types.HostState {
	return e.service.State()
}

// Done 返回宿主进入 stopped 时关闭的 channel
func (e *Endpoint) Done() <-chan struct{} {
	return e.service.Done()
}

// OwnerAttached 是否已绑定所有者进程
func (e *Endpoint) OwnerAttached() bool {
	return e.owner.Attached()
}

// Service 返回宿主控制服务
func (e *Endpoint) Service() *hostservice.Service {
	return e.service
}

// Metrics 返回指标收集器
func (e *Endpoint) Metrics() *metrics.Metrics {
	return e.metrics
}
