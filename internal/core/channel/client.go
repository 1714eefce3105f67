package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/dep2p/go-workerhost/internal/core/channel/wire"
	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/types"
)

// ============================================================================
//                              Client
// ============================================================================

// Client 客户端通道
type Client struct {
	conn net.Conn
	addr types.Address
	opts options

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan *wire.Response
	nextID  uint64
	failErr error

	closeOnce sync.Once
	done      chan struct{}
}

// 确保实现 interfaces.ClientChannel 接口
var _ interfaces.ClientChannel = (*Client)(nil)

// Connect 连接到服务端通道
func Connect(ctx context.Context, t interfaces.Transport, addr types.Address, opts ...Option) (*Client, error) {
	conn, err := t.Dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return newClient(conn, addr, applyOptions(opts)), nil
}

func newClient(conn net.Conn, addr types.Address, opts options) *Client {
	c := &Client{
		conn:    conn,
		addr:    addr,
		opts:    opts,
		pending: make(map[uint64]chan *wire.Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Addr 返回服务端地址
func (c *Client) Addr() types.Address {
	return c.addr
}

// GetService 获取服务代理
func (c *Client) GetService(name string) interfaces.Proxy {
	return &proxy{client: c, service: name}
}

// Done 返回连接结束时关闭的 channel
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err 返回连接失败原因；连接仍可用时返回 nil
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failErr
}

// Close 关闭连接，幂等
//
// 进行中与之后的调用以 types.ErrChannelClosed 失败。
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.fail(types.ErrChannelClosed)
		err = c.conn.Close()
		<-c.done
	})
	return err
}

// Call 调用远程方法
func (c *Client) Call(ctx context.Context, service, method string, args ...any) (any, error) {
	return c.call(ctx, service, method, args)
}

func (c *Client) call(ctx context.Context, service, method string, args []any) (any, error) {
	callErr := func(err error) error {
		return &types.TransportCallError{Service: service, Method: method, Err: err}
	}

	if c.opts.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.callTimeout)
		defer cancel()
	}

	payload, id, ch, err := c.register(service, method, args)
	if err != nil {
		var te *types.TransportCallError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, fmt.Errorf("encode %s.%s: %w", service, method, err)
	}

	c.writeMu.Lock()
	err = wire.WriteFrame(c.conn, payload)
	c.writeMu.Unlock()
	if err != nil {
		c.unregister(id)
		c.fail(fmt.Errorf("%w: %v", types.ErrConnectionClosed, err))
		return nil, callErr(c.Err())
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, callErr(c.Err())
		}
		if !resp.OK {
			return nil, &types.RemoteError{Kind: resp.ErrorKind, Message: resp.ErrorMessage}
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.unregister(id)
		return nil, callErr(ctx.Err())
	}
}

// register 分配调用 ID 并登记等待响应的 channel
func (c *Client) register(service, method string, args []any) ([]byte, uint64, chan *wire.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failErr != nil {
		return nil, 0, nil, &types.TransportCallError{Service: service, Method: method, Err: c.failErr}
	}

	c.nextID++
	id := c.nextID
	payload, err := wire.EncodeRequest(&wire.Request{
		CallID:  id,
		Service: service,
		Method:  method,
		Args:    args,
	})
	if err != nil {
		return nil, 0, nil, err
	}
	if len(payload) > wire.MaxFrameSize {
		return nil, 0, nil, fmt.Errorf("%w: %d bytes", wire.ErrFrameTooLarge, len(payload))
	}

	ch := make(chan *wire.Response, 1)
	c.pending[id] = ch
	return payload, id, ch, nil
}

func (c *Client) unregister(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// fail 记录首个失败原因并结束所有等待中的调用
func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failErr != nil {
		return
	}
	c.failErr = err
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer c.conn.Close()

	for {
		payload, err := wire.ReadFrame(c.conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.fail(types.ErrConnectionClosed)
			} else {
				c.fail(fmt.Errorf("%w: %v", types.ErrConnectionClosed, err))
			}
			return
		}

		resp, err := wire.DecodeResponse(payload)
		if err != nil {
			logger.Warn("响应解码失败", "addr", c.addr.String(), "error", err)
			c.fail(fmt.Errorf("%w: %v", types.ErrConnectionClosed, err))
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.CallID]
		delete(c.pending, resp.CallID)
		c.mu.Unlock()

		if ok {
			ch <- resp
		}
	}
}

// ============================================================================
//                              proxy
// ============================================================================

// proxy 绑定服务名的远程代理
type proxy struct {
	client  *Client
	service string
}

// Call 调用远程方法
func (p *proxy) Call(ctx context.Context, method string, args ...any) (any, error) {
	return p.client.call(ctx, p.service, method, args)
}
