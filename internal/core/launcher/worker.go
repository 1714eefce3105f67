package launcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/channel"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// ============================================================================
//                              Worker
// ============================================================================

// Worker 已启动的宿主进程
type Worker struct {
	cmd   *exec.Cmd
	cfg   config.HostConfig
	clock clock.Clock

	addr   types.Address
	client *channel.Client
	host   *hostservice.Proxy

	group errgroup.Group

	exited   chan struct{}
	exitCode int
	waitErr  error

	closeOnce sync.Once
	closeErr  error
}

// Addr 返回宿主实际地址
func (w *Worker) Addr() types.Address {
	return w.addr
}

// PID 返回宿主进程号
func (w *Worker) PID() int {
	return w.cmd.Process.Pid
}

// Config 返回传给宿主的配置（含补全的所有者进程号）
func (w *Worker) Config() config.HostConfig {
	return w.cfg
}

// Host 返回宿主控制服务存根
func (w *Worker) Host() *hostservice.Proxy {
	return w.host
}

// Client 返回底层客户端通道
func (w *Worker) Client() *channel.Client {
	return w.client
}

// Done 返回宿主进程退出时关闭的 channel
func (w *Worker) Done() <-chan struct{} {
	return w.exited
}

// ExitCode 返回退出码，进程仍在运行或被信号终止时为 -1
func (w *Worker) ExitCode() int {
	select {
	case <-w.exited:
		return w.exitCode
	default:
		return -1
	}
}

// Keepalive 按间隔发送 Ping，直到 ctx 结束或宿主退出
//
// 单次 Ping 失败即返回该错误，由调用方决定是否重启宿主。
func (w *Worker) Keepalive(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("keepalive interval must be positive: %s", interval)
	}
	ticker := w.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.exited:
			return ErrWorkerExited
		case <-ticker.C:
			if err := w.host.Ping(ctx); err != nil {
				select {
				case <-w.exited:
					return ErrWorkerExited
				default:
				}
				return err
			}
		}
	}
}

// Stop 请求宿主关闭并等待退出
//
// ctx 到期仍未退出时强制结束进程，返回 ctx 的错误。
func (w *Worker) Stop(ctx context.Context) (types.TerminationReason, error) {
	select {
	case <-w.exited:
		return w.reason()
	default:
	}

	if err := w.host.Shutdown(ctx); err != nil {
		// 宿主可能已在关闭途中断开连接，以进程退出结果为准
		logger.Debug("Shutdown 调用失败", "pid", w.PID(), "error", err)
	}

	select {
	case <-w.exited:
		return w.reason()
	case <-ctx.Done():
		logger.Warn("宿主未按时退出，强制结束", "pid", w.PID())
		w.kill()
		<-w.exited
		return types.ReasonNone, ctx.Err()
	}
}

// Wait 阻塞直到宿主退出，返回终止原因
//
// 退出码不对应终止原因时返回 ErrAbnormalExit。
func (w *Worker) Wait() (types.TerminationReason, error) {
	<-w.exited
	return w.reason()
}

// Close 关闭客户端通道；宿主仍在运行时强制结束
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		var err error
		if w.client != nil {
			err = multierr.Append(err, w.client.Close())
		}
		select {
		case <-w.exited:
		default:
			w.kill()
		}
		err = multierr.Append(err, w.group.Wait())
		w.closeErr = err
	})
	return w.closeErr
}

func (w *Worker) reason() (types.TerminationReason, error) {
	if reason, ok := types.ReasonFromExitCode(w.exitCode); ok {
		return reason, nil
	}
	if w.waitErr != nil {
		return types.ReasonNone, fmt.Errorf("%w: %v", ErrAbnormalExit, w.waitErr)
	}
	return types.ReasonNone, fmt.Errorf("%w: exit code %d", ErrAbnormalExit, w.exitCode)
}

func (w *Worker) waitProcess() {
	err := w.cmd.Wait()
	w.exitCode = -1
	if w.cmd.ProcessState != nil {
		w.exitCode = w.cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		w.waitErr = err
	} else if exitErr != nil && w.exitCode < 0 {
		w.waitErr = exitErr
	}
	close(w.exited)

	logger.Debug("宿主进程已退出", "pid", w.cmd.Process.Pid, "exitCode", w.exitCode)
}

func (w *Worker) kill() {
	if err := w.cmd.Process.Kill(); err != nil {
		logger.Debug("结束宿主进程失败", "pid", w.cmd.Process.Pid, "error", err)
	}
}
