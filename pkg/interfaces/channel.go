package interfaces

import (
	"context"

	"github.com/dep2p/go-workerhost/pkg/types"
)

// Service 定义可远程调用的服务对象
//
// 方法按名称静态分派，不依赖运行时反射。参数与返回值只能是
// 通道编码支持的类型：nil、bool、int64、float64、string、[]byte、[]any。
type Service interface {
	// Invoke 调用指定方法
	Invoke(ctx context.Context, method string, args []any) (any, error)
}

// ServiceFunc 将函数适配为 Service
type ServiceFunc func(ctx context.Context, method string, args []any) (any, error)

// Invoke 实现 Service 接口
func (f ServiceFunc) Invoke(ctx context.Context, method string, args []any) (any, error) {
	return f(ctx, method, args)
}

// ServerChannel 定义服务端通道（已绑定的监听端点）
type ServerChannel interface {
	// RegisterService 注册服务；同名重复注册返回 types.ErrServiceExists
	RegisterService(name string, svc Service) error

	// Addr 返回实际绑定地址
	Addr() types.Address

	// Close 释放监听资源，幂等
	Close() error
}

// ClientChannel 定义客户端通道
type ClientChannel interface {
	// GetService 获取指定服务的远程代理
	GetService(name string) Proxy

	// Close 关闭连接，幂等
	Close() error
}

// Proxy 定义远程服务代理
//
// Call 是同步往返：阻塞直到收到响应或发生传输层失败。
// 传输失败返回 *types.TransportCallError，服务端错误返回 *types.RemoteError。
type Proxy interface {
	Call(ctx context.Context, method string, args ...any) (any, error)
}
