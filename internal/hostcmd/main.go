package hostcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/host"
	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("hostcmd")

// ReadyPrefix 就绪行前缀，后接宿主实际地址
const ReadyPrefix = "WORKERHOST READY "

// 启停超时
const (
	startTimeout = 10 * time.Second
	stopTimeout  = 5 * time.Second
)

// Main 运行宿主进程并返回退出码
//
// ctx 取消等同于本地释放（退出码 ExitDisposed）。
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, args, os.LookupEnv, stdout, stderr)
}

func run(ctx context.Context, args []string, lookup config.LookupFunc, stdout, stderr io.Writer) int {
	f := newFlagSet(stderr)
	if err := f.parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return types.ExitDisposed
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return types.ExitUsage
	}

	if f.version {
		fmt.Fprintln(stdout, VersionInfo())
		return types.ExitDisposed
	}

	if err := setupLogging(f, lookup, stderr); err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return types.ExitUsage
	}

	cfg, err := buildConfig(f, lookup)
	if err != nil {
		fmt.Fprintf(stderr, "配置错误: %v\n", err)
		return types.ExitUsage
	}

	return serve(ctx, cfg, stdout, stderr)
}

// buildConfig 按 默认值 < 配置文件 < 环境变量 < 命令行 合并配置
func buildConfig(f *cliFlags, lookup config.LookupFunc) (config.HostConfig, error) {
	cfg := config.DefaultHostConfig()

	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile, cfg)
		if err != nil {
			return cfg, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	if err := f.apply(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupLogging 日志输出到 stderr，stdout 只保留就绪行
func setupLogging(f *cliFlags, lookup config.LookupFunc, stderr io.Writer) error {
	levelStr, formatStr := f.logLevel, f.logFormat
	if !f.isSet("log-level") {
		if v, ok := lookup(config.EnvPrefix + config.EnvLogLevel); ok {
			levelStr = v
		}
	}
	if !f.isSet("log-format") {
		if v, ok := lookup(config.EnvPrefix + config.EnvLogFormat); ok {
			formatStr = v
		}
	}

	level, err := log.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	format, err := log.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	log.SetOutputWithLevel(stderr, level, format)
	return nil
}

// serve 启动宿主并阻塞到终止
func serve(ctx context.Context, cfg config.HostConfig, stdout, stderr io.Writer) int {
	logger.Info("启动宿主", "version", Version, "commit", GitCommit,
		"transport", cfg.Transport.String(), "addr", cfg.Address().String(),
		"timeout", cfg.WatchdogTimeout.Duration(), "owner", cfg.OwnerPID)

	var endpoint *host.Endpoint
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Supply(&cfg),
		host.Module(),
		fx.Populate(&endpoint),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(stderr, "启动失败: %v\n", err)
		return types.ExitFatal
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	err := app.Start(startCtx)
	cancel()
	if err != nil {
		logger.Error("宿主启动失败", "error", err)
		fmt.Fprintf(stderr, "启动失败: %v\n", err)
		return types.ExitFatal
	}

	fmt.Fprintf(stdout, "%s%s\n", ReadyPrefix, endpoint.Addr())

	reason, err := endpoint.Run(ctx)
	if err != nil {
		logger.Error("宿主运行失败", "error", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	if stopErr := app.Stop(stopCtx); stopErr != nil {
		logger.Warn("停止宿主出错", "error", stopErr)
	}
	cancel()

	if err != nil {
		return types.ExitFatal
	}
	logReason(reason)
	return reason.ExitCode()
}

func logReason(reason types.TerminationReason) {
	switch reason {
	case types.ReasonDisposed:
		logger.Info("宿主退出", "reason", reason.String(), "exitCode", reason.ExitCode())
	default:
		logger.Warn("宿主退出", "reason", reason.String(), "exitCode", reason.ExitCode())
	}
}
