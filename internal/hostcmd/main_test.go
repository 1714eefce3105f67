package hostcmd

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/channel"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/internal/core/transport/tcp"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// lockedBuffer 可并发读写的输出缓冲
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func runSync(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr lockedBuffer
	code := run(context.Background(), args, noEnv, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// startHost 后台运行宿主，返回就绪地址与退出码 channel
func startHost(t *testing.T, ctx context.Context, args ...string) (types.Address, <-chan int) {
	t.Helper()
	var stdout, stderr lockedBuffer
	codes := make(chan int, 1)
	go func() {
		codes <- run(ctx, args, noEnv, &stdout, &stderr)
	}()

	var line string
	require.Eventually(t, func() bool {
		for _, l := range strings.Split(stdout.String(), "\n") {
			if strings.HasPrefix(l, ReadyPrefix) {
				line = l
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond, "未输出就绪行: %s", stderr.String())

	addr, err := types.ParseAddress(strings.TrimPrefix(line, ReadyPrefix))
	require.NoError(t, err)
	return addr, codes
}

func waitCode(t *testing.T, codes <-chan int, within time.Duration) int {
	t.Helper()
	select {
	case c := <-codes:
		return c
	case <-time.After(within):
		t.Fatalf("宿主进程未在 %s 内退出", within)
		return -1
	}
}

// ============================================================================
//                              参数处理
// ============================================================================

func TestRun_Help(t *testing.T) {
	code, _, stderr := runSync(t, "-h")
	assert.Equal(t, types.ExitDisposed, code)
	assert.Contains(t, stderr, "-timeout")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runSync(t, "-version")
	assert.Equal(t, types.ExitDisposed, code)
	assert.Contains(t, stdout, Version)
}

func TestRun_UsageErrors(t *testing.T) {
	cases := map[string][]string{
		"未知参数":  {"-nope"},
		"多余参数":  {"-pipe", "x", "extra"},
		"未知传输":  {"-transport", "smoke"},
		"管道缺少名称": {"-transport", "pipe"},
		"超时为负":  {"-transport", "tcp", "-timeout", "-1"},
		"超时格式":  {"-timeout", "soon"},
		"超时溢出":  {"-transport", "tcp", "-timeout", "18446744074"},
		"客户端参数": {"-pipe", "x", "-call-timeout", "5s"},
		"日志级别":  {"-pipe", "x", "-log-level", "loud"},
		"日志格式":  {"-pipe", "x", "-log-format", "xml"},
		"配置文件缺失": {"-config", "/nonexistent/workerhost.json"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			code, _, _ := runSync(t, args...)
			assert.Equal(t, types.ExitUsage, code)
		})
	}
}

func TestRun_BadEnv(t *testing.T) {
	var stdout, stderr lockedBuffer
	env := envMap(map[string]string{config.EnvPrefix + config.EnvPort: "abc"})
	code := run(context.Background(), []string{"-transport", "tcp"}, env, &stdout, &stderr)
	assert.Equal(t, types.ExitUsage, code)
}

func TestBuildConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "host.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"transport":"tcp","port":1000,"watchdog_timeout":"7s","owner_pid":11}`), 0o600))

	env := envMap(map[string]string{
		config.EnvPrefix + config.EnvPort:  "2000",
		config.EnvPrefix + config.EnvOwner: "22",
	})

	f := newFlagSet(&bytes.Buffer{})
	require.NoError(t, f.parse([]string{"-config", path, "-port", "3000"}))
	cfg, err := buildConfig(f, env)
	require.NoError(t, err)
	assert.Equal(t, types.TransportTCP, cfg.Transport)
	assert.Equal(t, 3000, cfg.Port, "命令行优先")
	assert.Equal(t, 22, cfg.OwnerPID, "环境变量覆盖配置文件")
	assert.Equal(t, 7*time.Second, cfg.WatchdogTimeout.Duration(), "配置文件覆盖默认值")

	f = newFlagSet(&bytes.Buffer{})
	require.NoError(t, f.parse([]string{"-config", path}))
	cfg, err = buildConfig(f, env)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Port)
}

func TestBuildConfig_Inference(t *testing.T) {
	f := newFlagSet(&bytes.Buffer{})
	require.NoError(t, f.parse([]string{"-port", "4711", "-timeout", "3"}))
	cfg, err := buildConfig(f, noEnv)
	require.NoError(t, err)
	assert.Equal(t, types.TransportTCP, cfg.Transport)
	assert.Equal(t, 3*time.Second, cfg.WatchdogTimeout.Duration(), "纯数字按秒计")

	f = newFlagSet(&bytes.Buffer{})
	require.NoError(t, f.parse([]string{"-pipe", "w1", "-owner", "99"}))
	cfg, err = buildConfig(f, noEnv)
	require.NoError(t, err)
	assert.Equal(t, types.TransportPipe, cfg.Transport)
	assert.Equal(t, "w1", cfg.PipeName)
	assert.Equal(t, 99, cfg.OwnerPID)
}

// ============================================================================
//                              宿主运行
// ============================================================================

func TestRun_BindFailureIsFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	code, stdout, stderr := runSync(t, "-transport", "tcp", "-port", strconv.Itoa(port))
	assert.Equal(t, types.ExitFatal, code)
	assert.NotContains(t, stdout, ReadyPrefix)
	assert.Contains(t, stderr, "启动失败")
}

func TestRun_WatchdogExitCode(t *testing.T) {
	_, codes := startHost(t, context.Background(), "-transport", "tcp", "-port", "0", "-timeout", "1")
	assert.Equal(t, types.ExitWatchdogTimeout, waitCode(t, codes, 5*time.Second))
}

func TestRun_ShutdownRPC(t *testing.T) {
	addr, codes := startHost(t, context.Background(), "-transport", "tcp", "-port", "0", "-timeout", "5")
	assert.Equal(t, types.TransportTCP, addr.Kind)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cli, err := channel.Connect(ctx, tcp.NewTransport(), addr)
	require.NoError(t, err)
	defer cli.Close()

	p := hostservice.NewProxy(cli.GetService(hostservice.ServiceName))
	require.NoError(t, p.Ping(ctx))
	require.NoError(t, p.Shutdown(ctx))

	assert.Equal(t, types.ExitDisposed, waitCode(t, codes, 3*time.Second))
}

func TestRun_ContextCanceled(t *testing.T) {
	dir, err := os.MkdirTemp("", "wh")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithCancel(context.Background())
	addr, codes := startHost(t, ctx, "-pipe", "cmd", "-pipe-dir", dir)
	assert.Equal(t, types.PipeAddress("cmd"), addr)

	cancel()
	assert.Equal(t, types.ExitDisposed, waitCode(t, codes, 3*time.Second))
}
