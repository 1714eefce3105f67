package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

// DefaultHost 空主机时的监听地址
const DefaultHost = "127.0.0.1"

// 默认连接参数
const (
	DefaultDialTimeout = 10 * time.Second
	DefaultKeepAlive   = 15 * time.Second
)

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport TCP 传输
type Transport struct {
	dialTimeout time.Duration
	keepAlive   time.Duration
}

// 确保实现 interfaces.Transport 接口
var _ interfaces.Transport = (*Transport)(nil)

// Option 传输选项
type Option func(*Transport)

// WithDialTimeout 设置拨号超时（0 表示只受 context 约束）
func WithDialTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.dialTimeout = d
	}
}

// WithKeepAlive 设置 TCP keepalive 周期（负数禁用）
func WithKeepAlive(d time.Duration) Option {
	return func(t *Transport) {
		t.keepAlive = d
	}
}

// NewTransport 创建 TCP 传输
func NewTransport(opts ...Option) *Transport {
	t := &Transport{
		dialTimeout: DefaultDialTimeout,
		keepAlive:   DefaultKeepAlive,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Kind 返回传输类型
func (t *Transport) Kind() types.TransportKind {
	return types.TransportTCP
}

// Listen 在 TCP 地址上监听
func (t *Transport) Listen(addr types.Address) (interfaces.Listener, error) {
	if addr.Kind != types.TransportTCP {
		return nil, fmt.Errorf("%w: tcp transport cannot listen on %s", types.ErrInvalidAddress, addr)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	host := addr.Host
	if host == "" {
		host = DefaultHost
	}

	lc := net.ListenConfig{KeepAlive: t.keepAlive}
	ln, err := lc.Listen(context.Background(), "tcp", net.JoinHostPort(host, strconv.Itoa(addr.Port)))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("%w: %s", types.ErrAddressInUse, addr)
		}
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		_ = ln.Close()
		return nil, fmt.Errorf("listen %s: not a tcp listener", addr)
	}

	bound := types.TCPAddress(host, tcpLn.Addr().(*net.TCPAddr).Port)
	logger.Debug("TCP 监听已建立", "requested", addr.String(), "bound", bound.String())

	return &Listener{TCPListener: tcpLn, bound: bound}, nil
}

// Dial 连接到 TCP 地址
func (t *Transport) Dial(ctx context.Context, addr types.Address) (net.Conn, error) {
	if addr.Kind != types.TransportTCP {
		return nil, fmt.Errorf("%w: tcp transport cannot dial %s", types.ErrInvalidAddress, addr)
	}
	if err := addr.ValidateDial(); err != nil {
		return nil, err
	}

	host := addr.Host
	if host == "" {
		host = DefaultHost
	}

	d := net.Dialer{
		Timeout:   t.dialTimeout,
		KeepAlive: t.keepAlive,
	}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(addr.Port)))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	return conn, nil
}
