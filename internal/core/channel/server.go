package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-workerhost/internal/core/channel/registry"
	"github.com/dep2p/go-workerhost/internal/core/channel/wire"
	"github.com/dep2p/go-workerhost/internal/core/metrics"
	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("core/channel")

// acceptRetryDelay Accept 非关闭类错误后的重试间隔
const acceptRetryDelay = 50 * time.Millisecond

// ============================================================================
//                              Server
// ============================================================================

// Server 服务端通道
type Server struct {
	listener interfaces.Listener
	registry *registry.Registry
	opts     options

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	conns    map[*serverConn]struct{}
	draining bool

	calls sync.WaitGroup // 进行中的调用
	loops sync.WaitGroup // accept 与读循环

	closed atomic.Bool
	done   chan struct{}
	err    error
}

// 确保实现 interfaces.ServerChannel 接口
var _ interfaces.ServerChannel = (*Server)(nil)

// Bind 在地址上绑定服务端通道并开始接受连接
func Bind(t interfaces.Transport, addr types.Address, opts ...Option) (*Server, error) {
	ln, err := t.Listen(addr)
	if err != nil {
		return nil, &types.TransportBindError{Address: addr, Err: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		listener: ln,
		registry: registry.New(),
		opts:     applyOptions(opts),
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[*serverConn]struct{}),
		done:     make(chan struct{}),
	}

	s.loops.Add(1)
	go s.acceptLoop()

	logger.Debug("服务端通道已绑定", "addr", ln.Bound().String())
	return s, nil
}

// RegisterService 注册服务
func (s *Server) RegisterService(name string, svc interfaces.Service) error {
	if s.closed.Load() {
		return types.ErrChannelClosed
	}
	return s.registry.Register(name, svc)
}

// Addr 返回实际绑定地址
func (s *Server) Addr() types.Address {
	return s.listener.Bound()
}

// Services 返回已注册服务名
func (s *Server) Services() []string {
	return s.registry.Names()
}

// ConnCount 返回当前连接数
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close 关闭通道，幂等
//
// 重复调用会阻塞到首次关闭完成并返回相同结果。
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		<-s.done
		return s.err
	}
	defer close(s.done)

	s.err = s.listener.Close()

	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		s.calls.Wait()
		close(drained)
	}()

	if s.opts.shutdownGrace > 0 {
		timer := time.NewTimer(s.opts.shutdownGrace)
		select {
		case <-drained:
		case <-timer.C:
			logger.Warn("等待进行中调用超时", "grace", s.opts.shutdownGrace)
		}
		timer.Stop()
	}
	s.cancel()

	s.mu.Lock()
	for c := range s.conns {
		_ = c.conn.Close()
	}
	s.mu.Unlock()

	s.loops.Wait()
	logger.Debug("服务端通道已关闭", "addr", s.listener.Bound().String())
	return s.err
}

func (s *Server) acceptLoop() {
	defer s.loops.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Warn("接受连接失败", "error", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		c := &serverConn{server: s, conn: conn}

		s.mu.Lock()
		if s.draining {
			s.mu.Unlock()
			_ = conn.Close()
			continue
		}
		s.conns[c] = struct{}{}
		s.loops.Add(1)
		s.mu.Unlock()

		go c.readLoop()
	}
}

func (s *Server) removeConn(c *serverConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// beginCall 登记一次进行中调用；关闭排空阶段返回 false
func (s *Server) beginCall() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return false
	}
	s.calls.Add(1)
	return true
}

// invoke 执行请求并生成响应，服务 panic 被恢复为 RemoteError
func (s *Server) invoke(req *wire.Request) (resp *wire.Response) {
	svc, ok := s.registry.Lookup(req.Service)
	if !ok {
		return wire.ErrorResponse(req.CallID, types.RemoteKindUnknownService,
			fmt.Sprintf("service %q is not registered", req.Service))
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("服务调用 panic", "service", req.Service, "method", req.Method, "panic", r)
			resp = wire.ErrorResponse(req.CallID, types.RemoteKindPanic, fmt.Sprint(r))
		}
	}()

	result, err := svc.Invoke(s.ctx, req.Method, req.Args)
	if err != nil {
		var re *types.RemoteError
		if errors.As(err, &re) {
			return wire.ErrorResponse(req.CallID, re.Kind, re.Message)
		}
		return wire.ErrorResponse(req.CallID, types.RemoteKindServiceError, err.Error())
	}
	return &wire.Response{CallID: req.CallID, OK: true, Result: result}
}

// ============================================================================
//                              serverConn
// ============================================================================

type serverConn struct {
	server *Server
	conn   net.Conn

	writeMu sync.Mutex
}

func (c *serverConn) readLoop() {
	s := c.server
	defer s.loops.Done()
	defer s.removeConn(c)
	defer c.conn.Close()

	for {
		payload, err := wire.ReadFrame(c.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.closed.Load() {
				logger.Debug("连接读取结束", "remote", c.conn.RemoteAddr(), "error", err)
			}
			return
		}
		s.opts.metrics.LogRecvBytes(len(payload) + 4)

		req, err := wire.DecodeRequest(payload)
		if err != nil {
			logger.Debug("请求解码失败", "error", err)
			var callID uint64
			if req != nil {
				callID = req.CallID
				s.opts.metrics.ObserveCall(req.Service, req.Method, metrics.OutcomeBadRequest, 0)
			}
			c.write(wire.ErrorResponse(callID, types.RemoteKindBadRequest, err.Error()))
			continue
		}

		if !s.beginCall() {
			// 排空阶段拒绝新请求，连接随后关闭
			s.opts.metrics.ObserveCall(req.Service, req.Method, metrics.OutcomeRemoteError, 0)
			c.write(wire.ErrorResponse(req.CallID, types.RemoteKindShuttingDown,
				"server channel is shutting down"))
			continue
		}
		go c.dispatch(req)
	}
}

func (c *serverConn) dispatch(req *wire.Request) {
	s := c.server
	defer s.calls.Done()

	s.opts.metrics.CallStarted()
	start := time.Now()
	resp := s.invoke(req)
	s.opts.metrics.CallFinished()

	outcome := metrics.OutcomeOK
	if !resp.OK {
		outcome = metrics.OutcomeRemoteError
	}
	s.opts.metrics.ObserveCall(req.Service, req.Method, outcome, time.Since(start))

	c.write(resp)
}

func (c *serverConn) write(resp *wire.Response) {
	payload, err := wire.EncodeResponse(resp)
	if err != nil {
		logger.Warn("响应编码失败", "callID", resp.CallID, "error", err)
		payload, err = wire.EncodeResponse(wire.ErrorResponse(resp.CallID, types.RemoteKindServiceError, err.Error()))
		if err != nil {
			return
		}
	}

	c.writeMu.Lock()
	err = wire.WriteFrame(c.conn, payload)
	c.writeMu.Unlock()
	if err != nil {
		logger.Debug("响应写入失败", "callID", resp.CallID, "error", err)
		return
	}
	c.server.opts.metrics.LogSentBytes(len(payload) + 4)
}
