package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dep2p/go-workerhost/pkg/types"
)

// 环境变量名（均使用 WORKERHOST_ 前缀）
const (
	EnvPrefix = "WORKERHOST_"

	EnvTransport   = "TRANSPORT"
	EnvPipe        = "PIPE"
	EnvPipeDir     = "PIPE_DIR"
	EnvHost        = "HOST"
	EnvPort        = "PORT"
	EnvTimeout     = "TIMEOUT"
	EnvOwner       = "OWNER"
	EnvCallTimeout = "CALL_TIMEOUT"
	EnvMetricsAddr = "METRICS_ADDR"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
)

// LookupFunc 环境变量查询函数，签名同 os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ApplyEnv 将 WORKERHOST_* 环境变量覆盖到配置
//
// lookup 为 nil 时使用 os.LookupEnv。空值视为未设置。
func ApplyEnv(cfg *HostConfig, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	// WORKERHOST_TRANSPORT
	if v, ok := get(EnvTransport); ok {
		kind, err := types.ParseTransportKind(v)
		if err != nil {
			return envError(EnvTransport, err)
		}
		cfg.Transport = kind
	}

	// WORKERHOST_PIPE / WORKERHOST_PIPE_DIR / WORKERHOST_HOST
	if v, ok := get(EnvPipe); ok {
		cfg.PipeName = v
	}
	if v, ok := get(EnvPipeDir); ok {
		cfg.PipeDir = v
	}
	if v, ok := get(EnvHost); ok {
		cfg.Host = v
	}

	// WORKERHOST_PORT
	if v, ok := get(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvPort, err)
		}
		cfg.Port = port
	}

	// WORKERHOST_TIMEOUT（秒或时长文本）
	if v, ok := get(EnvTimeout); ok {
		d, err := ParseDuration(v)
		if err != nil {
			return envError(EnvTimeout, err)
		}
		cfg.WatchdogTimeout = d
	}

	// WORKERHOST_OWNER
	if v, ok := get(EnvOwner); ok {
		pid, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvOwner, err)
		}
		cfg.OwnerPID = pid
	}

	// WORKERHOST_CALL_TIMEOUT
	if v, ok := get(EnvCallTimeout); ok {
		d, err := ParseDuration(v)
		if err != nil {
			return envError(EnvCallTimeout, err)
		}
		cfg.CallTimeout = d
	}

	// WORKERHOST_METRICS_ADDR
	if v, ok := get(EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	return nil
}

func envError(name string, err error) error {
	return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, name, err)
}
