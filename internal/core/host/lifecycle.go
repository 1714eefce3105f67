package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-workerhost/internal/core/channel"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// metricsShutdownTimeout 关闭指标 HTTP 服务的最长等待
const metricsShutdownTimeout = time.Second

// ============================================================================
//                              Initialize
// ============================================================================

// Initialize 绑定通道并启动监督组件
//
// 绑定失败返回 *types.TransportBindError；所有者绑定失败不视为错误。
// 失败时已创建的资源会被释放，Endpoint 不可再次初始化。
func (e *Endpoint) Initialize(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	if e.initialized.Load() {
		return types.ErrAlreadyInitialized
	}
	if e.released.Load() || e.service.ShutdownInitiated() {
		return types.ErrHostDisposed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	addr := e.cfg.Address()
	tr, err := e.transports.ForAddress(addr)
	if err != nil {
		return err
	}

	srv, err := channel.Bind(tr, addr,
		channel.WithMetrics(e.metrics),
		channel.WithShutdownGrace(e.cfg.ShutdownGrace.Duration()),
	)
	if err != nil {
		logger.Error("绑定通道失败", "addr", addr.String(), "error", err)
		return err
	}
	e.server = srv

	if err := srv.RegisterService(hostservice.ServiceName, e.service); err != nil {
		e.abortInit()
		return fmt.Errorf("register %s: %w", hostservice.ServiceName, err)
	}

	if e.cfg.MetricsAddr != "" {
		if err := e.startMetricsLocked(); err != nil {
			e.abortInit()
			return err
		}
	}

	if err := e.service.Start(); err != nil {
		e.abortInit()
		return err
	}

	if err := e.watchdog.Start(e.cfg.WatchdogTimeout.Duration()); err != nil {
		e.abortInit()
		return err
	}

	if pid := e.cfg.OwnerPID; pid > 0 {
		if !e.owner.Attach(pid) {
			logger.Warn("绑定所有者进程失败，宿主将在无所有者监控下运行",
				"pid", pid, "error", types.ErrOwnerAttach)
		}
	}

	e.initialized.Store(true)
	logger.Info("宿主已就绪",
		"addr", srv.Addr().String(),
		"watchdog", e.cfg.WatchdogTimeout.Duration(),
		"owner", e.cfg.OwnerPID,
		"ownerAttached", e.owner.Attached())
	return nil
}

// abortInit 释放初始化过程中已创建的资源，调用方持有 initMu
func (e *Endpoint) abortInit() {
	if err := e.releaseLocked(); err != nil {
		logger.Warn("初始化失败后释放资源出错", "error", err)
	}
}

func (e *Endpoint) startMetricsLocked() error {
	ln, err := net.Listen("tcp", e.cfg.MetricsAddr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", e.cfg.MetricsAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	e.metricsLn = ln
	e.metricsSrv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("指标 HTTP 服务退出", "error", err)
		}
	}()
	logger.Debug("指标 HTTP 服务已启动", "addr", ln.Addr().String())
	return nil
}

// ============================================================================
//                              Run / Dispose
// ============================================================================

// Run 阻塞直到宿主进入 stopped，释放资源后返回终止原因
//
// 只有未初始化时返回错误；监督触发的关闭只体现在返回的原因中。
// ctx 取消等同于 Dispose。
func (e *Endpoint) Run(ctx context.Context) (types.TerminationReason, error) {
	if !e.initialized.Load() {
		return types.ReasonNone, types.ErrNotInitialized
	}

	select {
	case <-e.service.Done():
	case <-ctx.Done():
		logger.Debug("运行上下文已取消，释放宿主")
		e.service.Dispose()
		<-e.service.Done()
	}

	if err := e.release(); err != nil {
		logger.Warn("释放宿主资源出错", "error", err)
	}
	return e.service.Reason(), nil
}

// Dispose 强制关闭并释放资源，幂等
func (e *Endpoint) Dispose() error {
	e.service.Dispose()
	return e.release()
}

func (e *Endpoint) release() error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	return e.releaseLocked()
}

// releaseLocked 释放全部资源，只执行一次，调用方持有 initMu
func (e *Endpoint) releaseLocked() error {
	e.releaseOnce.Do(func() {
		e.released.Store(true)

		var err error
		e.watchdog.Stop()
		err = multierr.Append(err, e.owner.Close())

		if e.server != nil {
			err = multierr.Append(err, e.server.Close())
		}

		if e.metricsSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			err = multierr.Append(err, e.metricsSrv.Shutdown(ctx))
			cancel()
		}

		reason := e.service.Reason()
		if reason.IsTerminal() {
			e.metrics.Terminated(reason)
		}

		e.releaseErr = err
		logger.Info("宿主已释放", "reason", reason.String(), "errors", len(multierr.Errors(err)))
	})
	return e.releaseErr
}
