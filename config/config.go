package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dep2p/go-workerhost/pkg/types"
)

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("invalid host config")

// 默认值
const (
	DefaultHost              = "127.0.0.1"
	DefaultOwnerPollInterval = 500 * time.Millisecond
	DefaultShutdownGrace     = 2 * time.Second
)

// HostConfig 宿主配置
type HostConfig struct {
	// Transport 传输类型（pipe / tcp）
	Transport types.TransportKind `json:"transport"`

	// PipeName 管道名，Transport 为 pipe 时必填
	PipeName string `json:"pipe_name,omitempty"`

	// PipeDir 管道套接字目录，空表示系统临时目录
	PipeDir string `json:"pipe_dir,omitempty"`

	// Host/Port TCP 监听地址，端口 0 由内核分配
	Host string `json:"host,omitempty"`
	Port int    `json:"port"`

	// WatchdogTimeout 看门狗超时，0 禁用
	WatchdogTimeout Duration `json:"watchdog_timeout"`

	// OwnerPID 所有者进程号，0 表示不绑定
	OwnerPID int `json:"owner_pid,omitempty"`

	// CallTimeout 客户端单次调用超时，0 表示不限
	//
	// 仅供连接宿主的一方使用（启动器、示例客户端），宿主进程不读取。
	CallTimeout Duration `json:"call_timeout,omitempty"`

	// OwnerPollInterval 所有者存活轮询间隔
	OwnerPollInterval Duration `json:"owner_poll_interval"`

	// ShutdownGrace 关闭时等待进行中调用的时长
	ShutdownGrace Duration `json:"shutdown_grace"`

	// MetricsAddr Prometheus 指标 HTTP 监听地址，空表示不开启
	MetricsAddr string `json:"metrics_addr,omitempty"`
}

// DefaultHostConfig 返回默认配置
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Transport:         types.TransportPipe,
		Host:              DefaultHost,
		OwnerPollInterval: Duration(DefaultOwnerPollInterval),
		ShutdownGrace:     Duration(DefaultShutdownGrace),
	}
}

// Validate 验证配置
func (c *HostConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	switch c.Transport {
	case types.TransportPipe:
		if c.PipeName == "" {
			return fmt.Errorf("%w: pipe transport requires a pipe name", ErrInvalidConfig)
		}
	case types.TransportTCP:
		if c.Port < 0 || c.Port > 65535 {
			return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
		}
	default:
		return fmt.Errorf("%w: unknown transport %s", ErrInvalidConfig, c.Transport)
	}

	if c.WatchdogTimeout < 0 {
		return fmt.Errorf("%w: watchdog timeout must not be negative", ErrInvalidConfig)
	}
	if c.OwnerPID < 0 {
		return fmt.Errorf("%w: owner pid must not be negative", ErrInvalidConfig)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("%w: call timeout must not be negative", ErrInvalidConfig)
	}
	if c.OwnerPollInterval <= 0 {
		return fmt.Errorf("%w: owner poll interval must be positive", ErrInvalidConfig)
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("%w: shutdown grace must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Address 返回宿主监听地址
func (c *HostConfig) Address() types.Address {
	if c.Transport == types.TransportTCP {
		return types.TCPAddress(c.Host, c.Port)
	}
	return types.PipeAddress(c.PipeName)
}
