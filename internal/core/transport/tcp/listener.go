package tcp

import (
	"net"
	"sync/atomic"

	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// ============================================================================
//                              Listener 实现
// ============================================================================

// Listener TCP 监听器
type Listener struct {
	*net.TCPListener

	bound  types.Address
	closed atomic.Bool
}

// 确保实现接口
var _ interfaces.Listener = (*Listener)(nil)

// Accept 接受连接并启用 TCP_NODELAY
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.TCPListener.AcceptTCP()
	if err != nil {
		return nil, err
	}
	_ = conn.SetNoDelay(true)
	return conn, nil
}

// Bound 返回实际绑定地址
func (l *Listener) Bound() types.Address {
	return l.bound
}

// Close 关闭监听器，幂等
func (l *Listener) Close() error {
	if l.closed.CompareAndSwap(false, true) {
		return l.TCPListener.Close()
	}
	return nil
}

// IsClosed 检查监听器是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}
