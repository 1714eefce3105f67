package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              TransportKind - 传输类型
// ============================================================================

// TransportKind 通道传输类型
type TransportKind int

const (
	// TransportUnknown 未知传输
	TransportUnknown TransportKind = iota
	// TransportPipe 本地管道（同机，按名称寻址）
	TransportPipe
	// TransportTCP TCP（回环或跨机器）
	TransportTCP
)

// String 返回传输类型的字符串表示
func (k TransportKind) String() string {
	switch k {
	case TransportPipe:
		return "pipe"
	case TransportTCP:
		return "tcp"
	default:
		return "unknown"
	}
}

// ParseTransportKind 解析传输类型字符串（不区分大小写）
func ParseTransportKind(s string) (TransportKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pipe", "unix":
		return TransportPipe, nil
	case "tcp":
		return TransportTCP, nil
	default:
		return TransportUnknown, fmt.Errorf("%w: %q", ErrUnknownTransport, s)
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (k TransportKind) MarshalText() ([]byte, error) {
	if k != TransportPipe && k != TransportTCP {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTransport, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (k *TransportKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTransportKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ============================================================================
//                              HostState - 宿主生命周期状态
// ============================================================================

// HostState 宿主生命周期状态
//
// 状态只能单调前进：Created → Running → ShuttingDown → Stopped。
type HostState int

const (
	// StateCreated 已创建，未运行
	StateCreated HostState = iota
	// StateRunning 运行中
	StateRunning
	// StateShuttingDown 关闭中（任一触发源首次触发后进入）
	StateShuttingDown
	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s HostState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ============================================================================
//                              TerminationReason - 终止原因
// ============================================================================

// TerminationReason 宿主运行结束的原因
type TerminationReason int

const (
	// ReasonNone 尚未终止
	ReasonNone TerminationReason = iota
	// ReasonDisposed 显式关闭（Shutdown RPC 或本地 Dispose）
	ReasonDisposed
	// ReasonWatchdogTimeout 看门狗超时
	ReasonWatchdogTimeout
	// ReasonDisowned Owner 进程退出
	ReasonDisowned
)

// String 返回终止原因的字符串表示
func (r TerminationReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonDisposed:
		return "disposed"
	case ReasonWatchdogTimeout:
		return "watchdog_timeout"
	case ReasonDisowned:
		return "disowned"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// IsTerminal 是否是一个真实的终止原因
func (r TerminationReason) IsTerminal() bool {
	return r == ReasonDisposed || r == ReasonWatchdogTimeout || r == ReasonDisowned
}
