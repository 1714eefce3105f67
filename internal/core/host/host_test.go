package host

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/channel"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/internal/core/owner"
	"github.com/dep2p/go-workerhost/internal/core/transport"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// ============================================================================
//                              辅助函数
// ============================================================================

// shortDir 返回足够短的临时目录，避免超过 sun_path 上限
func shortDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "wh")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func pipeConfig(t *testing.T, name string, timeout time.Duration) config.HostConfig {
	t.Helper()
	cfg := config.DefaultHostConfig()
	cfg.Transport = types.TransportPipe
	cfg.PipeName = name
	cfg.PipeDir = shortDir(t)
	cfg.WatchdogTimeout = config.Duration(timeout)
	return cfg
}

func tcpConfig(timeout time.Duration) config.HostConfig {
	cfg := config.DefaultHostConfig()
	cfg.Transport = types.TransportTCP
	cfg.Port = 0
	cfg.WatchdogTimeout = config.Duration(timeout)
	return cfg
}

func initialized(t *testing.T, cfg config.HostConfig, opts ...Option) *Endpoint {
	t.Helper()
	e := New(cfg, opts...)
	require.NoError(t, e.Initialize(context.Background()))
	t.Cleanup(func() { _ = e.Dispose() })
	return e
}

// connect 以客户端身份连接宿主
func connect(t *testing.T, e *Endpoint) *hostservice.Proxy {
	t.Helper()
	cfg := e.Config()
	set := transport.NewSet(transport.ConfigFromHost(&cfg))

	addr := e.Addr()
	tr, err := set.ForAddress(addr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cli, err := channel.Connect(ctx, tr, addr, channel.WithCallTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	return hostservice.NewProxy(cli.GetService(hostservice.ServiceName))
}

// runAsync 在后台运行宿主并返回结果 channel
func runAsync(ctx context.Context, e *Endpoint) <-chan types.TerminationReason {
	out := make(chan types.TerminationReason, 1)
	go func() {
		reason, _ := e.Run(ctx)
		out <- reason
	}()
	return out
}

func waitReason(t *testing.T, ch <-chan types.TerminationReason, within time.Duration) types.TerminationReason {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(within):
		t.Fatalf("宿主未在 %s 内结束", within)
		return types.ReasonNone
	}
}

// counterValue 读取无标签或单标签计数器的合计值
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

// startSleeper 启动一个可被杀死的子进程作为所有者
func startSleeper(t *testing.T) *exec.Cmd {
	t.Helper()
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})
	return cmd
}

// ============================================================================
//                              初始化
// ============================================================================

func TestEndpoint_RunBeforeInitialize(t *testing.T) {
	e := New(tcpConfig(0))
	reason, err := e.Run(context.Background())
	assert.ErrorIs(t, err, types.ErrNotInitialized)
	assert.Equal(t, types.ReasonNone, reason)
	assert.Equal(t, types.StateCreated, e.State())
}

func TestEndpoint_InitializeTwice(t *testing.T) {
	e := initialized(t, tcpConfig(0))
	assert.ErrorIs(t, e.Initialize(context.Background()), types.ErrAlreadyInitialized)
	assert.Equal(t, types.StateRunning, e.State())
}

func TestEndpoint_InitializeAfterDispose(t *testing.T) {
	e := New(tcpConfig(0))
	require.NoError(t, e.Dispose())
	assert.ErrorIs(t, e.Initialize(context.Background()), types.ErrHostDisposed)
}

func TestEndpoint_InvalidConfig(t *testing.T) {
	cfg := config.DefaultHostConfig()
	cfg.PipeName = ""

	e := New(cfg)
	err := e.Initialize(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Equal(t, types.StateCreated, e.State())
}

func TestEndpoint_BoundAddress(t *testing.T) {
	e := initialized(t, tcpConfig(0))

	addr := e.Addr()
	assert.Equal(t, types.TransportTCP, addr.Kind)
	assert.NotZero(t, addr.Port, "端口 0 应被替换为实际端口")
}

// ============================================================================
//                              端到端场景
// ============================================================================

func TestEndpoint_PingKeepsAliveThenShutdown(t *testing.T) {
	timeout, interval, total := 400*time.Millisecond, 100*time.Millisecond, 1200*time.Millisecond
	if !testing.Short() {
		timeout, interval, total = 2*time.Second, time.Second, 10*time.Second
	}

	e := initialized(t, pipeConfig(t, "alive", timeout))
	p := connect(t, e)
	done := runAsync(context.Background(), e)

	deadline := time.Now().Add(total)
	for time.Now().Before(deadline) {
		require.NoError(t, p.Ping(context.Background()))
		assert.Equal(t, types.StateRunning, e.State())
		time.Sleep(interval)
	}

	start := time.Now()
	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, types.ReasonDisposed, waitReason(t, done, time.Second))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, types.ReasonDisposed.ExitCode())

	assert.Positive(t, counterValue(t, e.Metrics().Registry(), "workerhost_watchdog_resets_total"))
	assert.Equal(t, 1.0, counterValue(t, e.Metrics().Registry(), "workerhost_terminations_total"))
}

func TestEndpoint_WatchdogTimeout(t *testing.T) {
	start := time.Now()
	e := initialized(t, tcpConfig(time.Second))

	reason := waitReason(t, runAsync(context.Background(), e), 5*time.Second)
	elapsed := time.Since(start)

	assert.Equal(t, types.ReasonWatchdogTimeout, reason)
	assert.Equal(t, 2, reason.ExitCode())
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestEndpoint_WatchdogTimeoutMockClock(t *testing.T) {
	mock := clock.NewMock()
	e := initialized(t, tcpConfig(time.Second), WithClock(mock))
	done := runAsync(context.Background(), e)

	mock.Add(900 * time.Millisecond)
	assert.Equal(t, types.StateRunning, e.State())

	mock.Add(200 * time.Millisecond)
	assert.Equal(t, types.ReasonWatchdogTimeout, waitReason(t, done, 2*time.Second))
}

func TestEndpoint_TimeoutZeroNeverFires(t *testing.T) {
	mock := clock.NewMock()
	e := initialized(t, tcpConfig(0), WithClock(mock))

	mock.Add(time.Hour)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, types.StateRunning, e.State())

	done := runAsync(context.Background(), e)
	require.NoError(t, e.Dispose())
	assert.Equal(t, types.ReasonDisposed, waitReason(t, done, 2*time.Second))
}

func TestEndpoint_OwnerExitDisowns(t *testing.T) {
	sleeper := startSleeper(t)

	cfg := pipeConfig(t, "owned", 0)
	cfg.OwnerPID = sleeper.Process.Pid
	cfg.OwnerPollInterval = config.Duration(50 * time.Millisecond)

	e := initialized(t, cfg)
	require.True(t, e.OwnerAttached())
	done := runAsync(context.Background(), e)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, types.StateRunning, e.State())

	require.NoError(t, sleeper.Process.Kill())
	_ = sleeper.Wait()

	reason := waitReason(t, done, 5*time.Second)
	assert.Equal(t, types.ReasonDisowned, reason)
	assert.Equal(t, 3, reason.ExitCode())
}

func TestEndpoint_OwnerAlreadyDead(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	require.NoError(t, cmd.Process.Kill())
	_ = cmd.Wait()

	cfg := tcpConfig(0)
	cfg.OwnerPID = pid
	e := initialized(t, cfg)

	assert.False(t, e.OwnerAttached())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, types.StateRunning, e.State())
	assert.Equal(t, types.ReasonNone, e.Reason())
}

func TestEndpoint_OwnerProberInjected(t *testing.T) {
	mock := clock.NewMock()
	var mu sync.Mutex
	alive := true
	prober := owner.ProberFunc(func(int) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		return alive, nil
	})

	cfg := tcpConfig(0)
	cfg.OwnerPID = 4242
	e := initialized(t, cfg, WithClock(mock), WithProber(prober))
	require.True(t, e.OwnerAttached())
	done := runAsync(context.Background(), e)

	mu.Lock()
	alive = false
	mu.Unlock()

	require.Eventually(t, func() bool {
		mock.Add(cfg.OwnerPollInterval.Duration())
		return e.State() == types.StateStopped
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, types.ReasonDisowned, waitReason(t, done, 2*time.Second))
}

func TestEndpoint_PipeNameInUse(t *testing.T) {
	cfg := pipeConfig(t, "taken", 0)
	first := initialized(t, cfg)

	second := New(cfg)
	err := second.Initialize(context.Background())
	require.Error(t, err)

	var bindErr *types.TransportBindError
	require.True(t, errors.As(err, &bindErr))
	assert.ErrorIs(t, err, types.ErrAddressInUse)
	assert.ErrorIs(t, err, types.ErrTransportBind)

	// 第一个宿主不受影响
	p := connect(t, first)
	require.NoError(t, p.Ping(context.Background()))
	assert.Equal(t, types.StateRunning, first.State())
}

func TestEndpoint_ConcurrentShutdown(t *testing.T) {
	e := initialized(t, tcpConfig(0))
	done := runAsync(context.Background(), e)

	proxies := make([]*hostservice.Proxy, 8)
	for i := range proxies {
		proxies[i] = connect(t, e)
	}

	var wg sync.WaitGroup
	for _, p := range proxies {
		wg.Add(1)
		go func(p *hostservice.Proxy) {
			defer wg.Done()
			// 晚到的调用可能因通道关闭而失败
			_ = p.Shutdown(context.Background())
		}(p)
	}
	wg.Wait()

	assert.Equal(t, types.ReasonDisposed, waitReason(t, done, 2*time.Second))
	assert.Equal(t, 1.0, counterValue(t, e.Metrics().Registry(), "workerhost_terminations_total"))
}

func TestEndpoint_DisposeConcurrentWithRun(t *testing.T) {
	e := initialized(t, pipeConfig(t, "race", 0))
	done := runAsync(context.Background(), e)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.Dispose()
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, types.ReasonDisposed, waitReason(t, done, 2*time.Second))
	assert.Equal(t, types.StateStopped, e.State())

	// 释放后地址可被新宿主复用
	again := initialized(t, e.Config())
	assert.Equal(t, types.StateRunning, again.State())
}

func TestEndpoint_RunContextCanceled(t *testing.T) {
	e := initialized(t, tcpConfig(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, e)
	cancel()

	assert.Equal(t, types.ReasonDisposed, waitReason(t, done, 2*time.Second))
}

func TestEndpoint_TriggerAfterStopIgnored(t *testing.T) {
	e := initialized(t, tcpConfig(0))
	require.NoError(t, e.Dispose())

	e.onWatchdogExpired()
	e.onOwnerExited()
	assert.Equal(t, types.ReasonDisposed, e.Reason())
}

func TestEndpoint_MetricsHTTP(t *testing.T) {
	cfg := tcpConfig(0)
	cfg.MetricsAddr = "127.0.0.1:0"
	e := initialized(t, cfg)

	addr := e.MetricsAddr()
	require.NotEmpty(t, addr)

	p := connect(t, e)
	require.NoError(t, p.Ping(context.Background()))

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "workerhost_rpc_calls_total")

	require.NoError(t, e.Dispose())
	_, err = http.Get("http://" + addr + "/metrics")
	assert.Error(t, err)
}
