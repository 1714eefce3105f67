package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/channel"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/internal/core/transport"
	"github.com/dep2p/go-workerhost/internal/hostcmd"
	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("core/launcher")

// DefaultReadyTimeout 等待就绪行的默认时长
const DefaultReadyTimeout = 10 * time.Second

var (
	// ErrReadyTimeout 宿主未在限定时间内就绪
	ErrReadyTimeout = errors.New("worker host not ready in time")

	// ErrExitedBeforeReady 宿主在就绪前退出（通常是绑定失败或参数无效）
	ErrExitedBeforeReady = errors.New("worker host exited before ready")

	// ErrWorkerExited 宿主进程已退出
	ErrWorkerExited = errors.New("worker host exited")

	// ErrAbnormalExit 退出码不对应任何终止原因
	ErrAbnormalExit = errors.New("worker host exited abnormally")
)

// Spec 宿主进程启动描述
type Spec struct {
	// Path 宿主可执行文件路径
	Path string

	// Args 置于宿主参数之前的额外参数
	Args []string

	// Env 追加到当前环境之后的环境变量（KEY=VALUE）
	Env []string

	// Config 宿主配置，转换为命令行参数传给子进程
	Config config.HostConfig

	// Owned 为 true 且 Config.OwnerPID 为 0 时，以当前进程作为所有者
	Owned bool

	// ReadyTimeout 等待就绪行的时长，0 使用 DefaultReadyTimeout
	ReadyTimeout time.Duration

	// Stderr 宿主 stderr 转发目标，nil 丢弃
	Stderr io.Writer

	// Clock 保活使用的时钟，nil 使用真实时钟
	Clock clock.Clock
}

// Launch 启动宿主进程并连接到它
//
// ctx 只约束启动过程；返回的 Worker 生命周期独立于 ctx。
func Launch(ctx context.Context, spec Spec) (*Worker, error) {
	cfg := spec.Config
	if spec.Owned && cfg.OwnerPID == 0 {
		cfg.OwnerPID = os.Getpid()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if spec.Path == "" {
		return nil, fmt.Errorf("%w: empty executable path", config.ErrInvalidConfig)
	}

	readyTimeout := spec.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = DefaultReadyTimeout
	}
	clk := spec.Clock
	if clk == nil {
		clk = clock.New()
	}

	args := append(append([]string{}, spec.Args...), HostArgs(cfg)...)
	cmd := exec.Command(spec.Path, args...) //nolint:gosec // G204: 宿主路径由调用方指定是预期行为
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stderr = spec.Stderr
	cmd.SysProcAttr = sysProcAttr()

	// 自建管道：stdout 读取与 cmd.Wait 互不依赖
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stdout = stdoutW

	if err := cmd.Start(); err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return nil, fmt.Errorf("start %s: %w", spec.Path, err)
	}
	_ = stdoutW.Close()

	w := &Worker{
		cmd:    cmd,
		cfg:    cfg,
		clock:  clk,
		exited: make(chan struct{}),
	}
	logger.Debug("宿主进程已启动", "pid", cmd.Process.Pid, "path", spec.Path)

	ready := make(chan types.Address, 1)
	w.group.Go(func() error {
		defer stdoutR.Close()
		return scanReady(stdoutR, ready)
	})
	w.group.Go(func() error {
		w.waitProcess()
		return nil
	})

	addr, err := w.awaitReady(ctx, ready, readyTimeout)
	if err != nil {
		w.kill()
		_ = w.group.Wait()
		return nil, err
	}
	w.addr = addr

	if err := w.connect(ctx); err != nil {
		w.kill()
		_ = w.group.Wait()
		return nil, err
	}

	logger.Info("宿主已就绪", "pid", w.PID(), "addr", addr.String())
	return w, nil
}

// scanReady 读取就绪行，之后继续排空 stdout 直到 EOF
func scanReady(r io.Reader, ready chan<- types.Address) error {
	sc := bufio.NewScanner(r)
	found := false
	for sc.Scan() {
		if found {
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, hostcmd.ReadyPrefix) {
			continue
		}
		addr, err := types.ParseAddress(strings.TrimPrefix(line, hostcmd.ReadyPrefix))
		if err != nil {
			logger.Warn("就绪行无法解析", "line", line, "error", err)
			continue
		}
		found = true
		ready <- addr
	}
	return sc.Err()
}

func (w *Worker) awaitReady(ctx context.Context, ready <-chan types.Address, timeout time.Duration) (types.Address, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case addr := <-ready:
		return addr, nil
	case <-w.exited:
		// 退出与就绪行同时到达时以就绪行为准
		select {
		case addr := <-ready:
			return addr, nil
		default:
		}
		return types.Address{}, fmt.Errorf("%w: exit code %d", ErrExitedBeforeReady, w.ExitCode())
	case <-timer.C:
		return types.Address{}, fmt.Errorf("%w after %s", ErrReadyTimeout, timeout)
	case <-ctx.Done():
		return types.Address{}, ctx.Err()
	}
}

func (w *Worker) connect(ctx context.Context) error {
	set := transport.NewSet(transport.ConfigFromHost(&w.cfg))
	tr, err := set.ForAddress(w.addr)
	if err != nil {
		return err
	}

	opts := []channel.Option{}
	if d := w.cfg.CallTimeout.Duration(); d > 0 {
		opts = append(opts, channel.WithCallTimeout(d))
	}
	cli, err := channel.Connect(ctx, tr, w.addr, opts...)
	if err != nil {
		return err
	}
	w.client = cli
	w.host = hostservice.NewProxy(cli.GetService(hostservice.ServiceName))
	return nil
}
