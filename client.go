package workerhost

import (
	"context"

	"github.com/dep2p/go-workerhost/internal/core/channel"
	"github.com/dep2p/go-workerhost/internal/core/hostservice"
	"github.com/dep2p/go-workerhost/internal/core/transport"
)

// Client 宿主控制服务客户端
type Client struct {
	conn *channel.Client
	host *hostservice.Proxy
}

// Dial 连接到宿主
//
// addr 的协议前缀决定传输类型，例如 pipe://worker-1 或 tcp://127.0.0.1:4711。
func Dial(ctx context.Context, addr string, opts ...DialOption) (*Client, error) {
	o := defaultDialOptions()
	for _, opt := range opts {
		opt(&o)
	}

	parsed, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}

	set := transport.NewSet(transport.Config{PipeDir: o.pipeDir, DialTimeout: o.dialTimeout})
	tr, err := set.ForAddress(parsed)
	if err != nil {
		return nil, err
	}

	var chOpts []channel.Option
	if o.callTimeout > 0 {
		chOpts = append(chOpts, channel.WithCallTimeout(o.callTimeout))
	}
	conn, err := channel.Connect(ctx, tr, parsed, chOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		host: hostservice.NewProxy(conn.GetService(hostservice.ServiceName)),
	}, nil
}

// Addr 返回宿主地址
func (c *Client) Addr() Address {
	return c.conn.Addr()
}

// Ping 发送存活信号并校验回显
func (c *Client) Ping(ctx context.Context) error {
	return c.host.Ping(ctx)
}

// Shutdown 请求宿主以 Disposed 原因关闭
func (c *Client) Shutdown(ctx context.Context) error {
	return c.host.Shutdown(ctx)
}

// Call 调用宿主上注册的任意服务方法
func (c *Client) Call(ctx context.Context, service, method string, args ...any) (any, error) {
	return c.conn.Call(ctx, service, method, args...)
}

// Done 返回连接断开时关闭的 channel
func (c *Client) Done() <-chan struct{} {
	return c.conn.Done()
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.conn.Close()
}
