// Package types 定义 workerhost 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              地址/传输相关错误
// ============================================================================

var (
	// ErrUnknownTransport 未知传输类型
	ErrUnknownTransport = errors.New("unknown transport")

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAddressInUse 地址已被占用
	ErrAddressInUse = errors.New("address already in use")

	// ErrTransportBind 绑定失败（致命，终止启动）
	ErrTransportBind = errors.New("transport bind failed")

	// ErrTransportCall 单次 RPC 调用失败（调用方可恢复）
	ErrTransportCall = errors.New("transport call failed")

	// ErrConnectionClosed 连接已关闭
	ErrConnectionClosed = errors.New("connection closed")

	// ErrChannelClosed 通道已关闭
	ErrChannelClosed = errors.New("channel closed")
)

// ============================================================================
//                              服务注册相关错误
// ============================================================================

var (
	// ErrEmptyServiceName 空服务名
	ErrEmptyServiceName = errors.New("empty service name")

	// ErrServiceExists 服务名已注册
	ErrServiceExists = errors.New("service already registered")

	// ErrNilService 服务对象为空
	ErrNilService = errors.New("nil service")

	// ErrRemote 远端返回错误
	ErrRemote = errors.New("remote error")
)

// ============================================================================
//                              宿主相关错误
// ============================================================================

var (
	// ErrNotInitialized 宿主未初始化
	ErrNotInitialized = errors.New("host not initialized")

	// ErrAlreadyInitialized 宿主已初始化
	ErrAlreadyInitialized = errors.New("host already initialized")

	// ErrHostDisposed 宿主已释放
	ErrHostDisposed = errors.New("host disposed")

	// ErrOwnerAttach Owner 附加失败（软失败，仅记录日志）
	ErrOwnerAttach = errors.New("owner attach failed")
)

// ============================================================================
//                              TransportBindError
// ============================================================================

// TransportBindError 绑定地址失败
//
// 地址被占用或不可访问时返回；对宿主启动是致命错误。
type TransportBindError struct {
	Address Address
	Err     error
}

// Error 实现 error 接口
func (e *TransportBindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Address, e.Err)
}

// Unwrap 返回底层错误
func (e *TransportBindError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrTransportBind) 成立
func (e *TransportBindError) Is(target error) bool {
	return target == ErrTransportBind
}

// ============================================================================
//                              TransportCallError
// ============================================================================

// TransportCallError 单次 RPC 调用的传输层失败
//
// 连接断开或调用超时时返回给调用方，绝不会以零值结果静默返回。
type TransportCallError struct {
	Service string
	Method  string
	Err     error
}

// Error 实现 error 接口
func (e *TransportCallError) Error() string {
	return fmt.Sprintf("call %s.%s: %v", e.Service, e.Method, e.Err)
}

// Unwrap 返回底层错误
func (e *TransportCallError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrTransportCall) 成立
func (e *TransportCallError) Is(target error) bool {
	return target == ErrTransportCall
}

// ============================================================================
//                              RemoteError
// ============================================================================

// 远端错误类别
const (
	RemoteKindUnknownService = "unknown_service"
	RemoteKindUnknownMethod  = "unknown_method"
	RemoteKindServiceError   = "service_error"
	RemoteKindPanic          = "panic"
	RemoteKindBadRequest     = "bad_request"
	RemoteKindShuttingDown   = "shutting_down"
)

// RemoteError 服务端处理调用时返回的错误
//
// 与 TransportCallError 不同，调用本身已完成往返。
type RemoteError struct {
	Kind    string
	Message string
}

// Error 实现 error 接口
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %s", e.Kind, e.Message)
}

// Is 使 errors.Is(err, ErrRemote) 成立
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
