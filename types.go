package workerhost

import (
	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Address 通道端点地址
	Address = types.Address

	// TransportKind 传输类型
	TransportKind = types.TransportKind

	// TerminationReason 终止原因
	TerminationReason = types.TerminationReason

	// HostState 宿主生命周期状态
	HostState = types.HostState

	// Config 宿主配置
	Config = config.HostConfig
)

// 传输类型
const (
	TransportPipe = types.TransportPipe
	TransportTCP  = types.TransportTCP
)

// 终止原因
const (
	ReasonNone            = types.ReasonNone
	ReasonDisposed        = types.ReasonDisposed
	ReasonWatchdogTimeout = types.ReasonWatchdogTimeout
	ReasonDisowned        = types.ReasonDisowned
)

// 进程退出码
const (
	ExitDisposed        = types.ExitDisposed
	ExitFatal           = types.ExitFatal
	ExitWatchdogTimeout = types.ExitWatchdogTimeout
	ExitDisowned        = types.ExitDisowned
	ExitUsage           = types.ExitUsage
)

// DefaultConfig 返回默认宿主配置（管道传输，需设置 PipeName）
func DefaultConfig() Config {
	return config.DefaultHostConfig()
}

// ParseAddress 解析 pipe://<name>、unix://<path> 或 tcp://<host>:<port>
func ParseAddress(s string) (Address, error) {
	return types.ParseAddress(s)
}

// ExitCode 返回终止原因对应的进程退出码
func ExitCode(reason TerminationReason) int {
	return reason.ExitCode()
}

// ReasonFromExitCode 将退出码映射回终止原因
func ReasonFromExitCode(code int) (TerminationReason, bool) {
	return types.ReasonFromExitCode(code)
}
