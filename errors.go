package workerhost

import (
	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/internal/core/launcher"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 通道错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrTransportBind 绑定失败，可用 errors.As 取得 *TransportBindError
	ErrTransportBind = types.ErrTransportBind

	// ErrTransportCall 单次调用失败，可用 errors.As 取得 *TransportCallError
	ErrTransportCall = types.ErrTransportCall

	// ErrRemote 远端返回错误，可用 errors.As 取得 *RemoteError
	ErrRemote = types.ErrRemote

	// ErrAddressInUse 地址已被占用
	ErrAddressInUse = types.ErrAddressInUse

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = types.ErrInvalidAddress

	// ErrConnectionClosed 连接已关闭
	ErrConnectionClosed = types.ErrConnectionClosed

	// ErrPingMismatch Ping 回显不一致
	ErrPingMismatch = hostservice.ErrPingMismatch

	// ────────────────────────────────────────────────────────────────────────
	// 宿主错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = config.ErrInvalidConfig

	// ErrNotInitialized 宿主未初始化
	ErrNotInitialized = types.ErrNotInitialized

	// ErrHostDisposed 宿主已释放
	ErrHostDisposed = types.ErrHostDisposed

	// ────────────────────────────────────────────────────────────────────────
	// 启动器错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrReadyTimeout 宿主进程未按时就绪
	ErrReadyTimeout = launcher.ErrReadyTimeout

	// ErrExitedBeforeReady 宿主进程在就绪前退出
	ErrExitedBeforeReady = launcher.ErrExitedBeforeReady

	// ErrAbnormalExit 宿主进程异常退出
	ErrAbnormalExit = launcher.ErrAbnormalExit
)

// 类型化错误
type (
	// TransportBindError 绑定地址失败
	TransportBindError = types.TransportBindError

	// TransportCallError 单次调用失败
	TransportCallError = types.TransportCallError

	// RemoteError 远端服务返回的错误
	RemoteError = types.RemoteError
)
