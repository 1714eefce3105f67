package hostcmd

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// errUsage 启动参数无效
var errUsage = errors.New("invalid arguments")

// cliFlags 命令行参数
type cliFlags struct {
	fs *flag.FlagSet

	transport   string
	pipe        string
	pipeDir     string
	host        string
	port        int
	timeout     config.Duration
	owner       int
	configFile  string
	metricsAddr string
	logLevel    string
	logFormat   string
	version     bool
}

func newFlagSet(stderr io.Writer) *cliFlags {
	f := &cliFlags{fs: flag.NewFlagSet("workerhost", flag.ContinueOnError)}
	fs := f.fs
	fs.SetOutput(stderr)

	// 通道
	fs.StringVar(&f.transport, "transport", "", "传输类型 (pipe/tcp)")
	fs.StringVar(&f.pipe, "pipe", "", "管道名或套接字绝对路径")
	fs.StringVar(&f.pipeDir, "pipe-dir", "", "管道套接字目录（默认系统临时目录）")
	fs.StringVar(&f.host, "host", "", "TCP 监听地址（默认 127.0.0.1）")
	fs.IntVar(&f.port, "port", 0, "TCP 监听端口（0 = 随机端口）")

	// 监督
	fs.Var(&f.timeout, "timeout", "看门狗超时，纯数字按秒计（0 = 禁用）")
	fs.IntVar(&f.owner, "owner", 0, "所有者进程号（0 = 不绑定）")

	// 其他
	fs.StringVar(&f.configFile, "config", "", "JSON 配置文件路径")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Prometheus 指标监听地址（空 = 不开启）")
	fs.StringVar(&f.logLevel, "log-level", "", "日志级别 (debug/info/warn/error)")
	fs.StringVar(&f.logFormat, "log-format", "", "日志格式 (text/json)")
	fs.BoolVar(&f.version, "version", false, "显示版本信息")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "用法: workerhost [选项]\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\n退出码: %d 正常关闭, %d 启动失败, %d 看门狗超时, %d 所有者退出, %d 参数无效\n",
			types.ExitDisposed, types.ExitFatal, types.ExitWatchdogTimeout, types.ExitDisowned, types.ExitUsage)
	}
	return f
}

func (f *cliFlags) parse(args []string) error {
	if err := f.fs.Parse(args); err != nil {
		return err
	}
	if f.fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, f.fs.Arg(0))
	}
	return nil
}

// isSet 参数是否在命令行显式设置
func (f *cliFlags) isSet(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// apply 将显式设置的参数覆盖到配置
func (f *cliFlags) apply(cfg *config.HostConfig) error {
	var err error
	f.fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "transport":
			var kind types.TransportKind
			kind, err = types.ParseTransportKind(f.transport)
			cfg.Transport = kind
		case "pipe":
			cfg.PipeName = f.pipe
			// 只给出管道名时默认使用管道传输
			if !f.isSet("transport") {
				cfg.Transport = types.TransportPipe
			}
		case "pipe-dir":
			cfg.PipeDir = f.pipeDir
		case "host":
			cfg.Host = f.host
		case "port":
			cfg.Port = f.port
			if !f.isSet("transport") && !f.isSet("pipe") {
				cfg.Transport = types.TransportTCP
			}
		case "timeout":
			cfg.WatchdogTimeout = f.timeout
		case "owner":
			cfg.OwnerPID = f.owner
		case "metrics-addr":
			cfg.MetricsAddr = f.metricsAddr
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}
