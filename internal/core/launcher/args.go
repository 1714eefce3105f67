package launcher

import (
	"strconv"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// HostArgs 将宿主配置转换为宿主进程的命令行参数
//
// OwnerPollInterval 与 ShutdownGrace 没有对应参数，使用宿主默认值。
func HostArgs(cfg config.HostConfig) []string {
	args := []string{"-transport", cfg.Transport.String()}

	switch cfg.Transport {
	case types.TransportPipe:
		args = append(args, "-pipe", cfg.PipeName)
		if cfg.PipeDir != "" {
			args = append(args, "-pipe-dir", cfg.PipeDir)
		}
	case types.TransportTCP:
		if cfg.Host != "" {
			args = append(args, "-host", cfg.Host)
		}
		args = append(args, "-port", strconv.Itoa(cfg.Port))
	}

	args = append(args, "-timeout", cfg.WatchdogTimeout.String())
	if cfg.OwnerPID > 0 {
		args = append(args, "-owner", strconv.Itoa(cfg.OwnerPID))
	}
	if cfg.MetricsAddr != "" {
		args = append(args, "-metrics-addr", cfg.MetricsAddr)
	}
	return args
}
