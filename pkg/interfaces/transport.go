// Package interfaces 定义 workerhost 公共接口
//
// 本文件定义 Transport 接口，抽象底层字节流传输（本地管道、TCP）。
package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-workerhost/pkg/types"
)

// Transport 定义传输层接口
//
// Transport 只负责建立字节流，RPC 信封编码在通道层完成，
// 因此切换传输不会改变服务契约。
type Transport interface {
	// Kind 返回传输类型
	Kind() types.TransportKind

	// Listen 在指定地址监听
	//
	// 地址已被占用时返回的错误满足 errors.Is(err, types.ErrAddressInUse)。
	Listen(addr types.Address) (Listener, error)

	// Dial 拨号连接到指定地址
	Dial(ctx context.Context, addr types.Address) (net.Conn, error)
}

// Listener 定义监听器接口
type Listener interface {
	net.Listener

	// Bound 返回实际绑定的地址（例如 TCP 端口 0 被解析为真实端口）
	Bound() types.Address
}
