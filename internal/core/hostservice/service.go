package hostservice

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-workerhost/internal/core/lifecycle"
	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("core/hostservice")

// ServiceName 宿主控制服务在通道上的注册名
const ServiceName = "WorkerHost"

// 远程方法名
const (
	MethodPing     = "Ping"
	MethodShutdown = "Shutdown"
)

// ============================================================================
//                              Service
// ============================================================================

// Service 宿主控制服务
type Service struct {
	machine *lifecycle.Machine

	initiated atomic.Bool
	reason    atomic.Int32

	pingMu sync.RWMutex
	onPing []func()

	pings atomic.Uint64

	disposeOnce sync.Once
}

// 确保实现 interfaces.Service 接口
var _ interfaces.Service = (*Service)(nil)

// New 创建宿主控制服务
func New(machine *lifecycle.Machine) *Service {
	if machine == nil {
		machine = lifecycle.NewMachine()
	}
	return &Service{machine: machine}
}

// Start 将服务推进到 running
func (s *Service) Start() error {
	if !s.machine.TryAdvance(types.StateCreated, types.StateRunning) {
		return fmt.Errorf("%w: start from %s", lifecycle.ErrInvalidTransition, s.machine.State())
	}
	return nil
}

// Ping 存活信号，回显 token
func (s *Service) Ping(token string) string {
	s.pings.Add(1)

	s.pingMu.RLock()
	callbacks := s.onPing
	s.pingMu.RUnlock()

	for _, cb := range callbacks {
		cb()
	}
	return token
}

// Pings 返回已收到的 Ping 次数
func (s *Service) Pings() uint64 {
	return s.pings.Load()
}

// OnPing 注册 Ping 回调
func (s *Service) OnPing(cb func()) {
	s.pingMu.Lock()
	defer s.pingMu.Unlock()
	s.onPing = append(s.onPing[:len(s.onPing):len(s.onPing)], cb)
}

// Shutdown 请求以 Disposed 原因关闭
func (s *Service) Shutdown() {
	s.RequestShutdown(types.ReasonDisposed)
}

// RequestShutdown 以指定原因请求关闭
//
// 只有第一个请求生效并返回 true。
func (s *Service) RequestShutdown(reason types.TerminationReason) bool {
	if !reason.IsTerminal() {
		return false
	}
	if !s.initiated.CompareAndSwap(false, true) {
		logger.Debug("关闭已在进行中，忽略", "reason", reason.String(), "winner", s.Reason().String())
		return false
	}
	s.reason.Store(int32(reason))

	logger.Info("宿主开始关闭", "reason", reason.String())
	_ = s.machine.AdvanceTo(types.StateShuttingDown)
	_ = s.machine.AdvanceTo(types.StateStopped)
	return true
}

// ShutdownInitiated 是否已开始关闭
func (s *Service) ShutdownInitiated() bool {
	return s.initiated.Load()
}

// WaitUntilShutdown 阻塞直到 stopped，返回终止原因
func (s *Service) WaitUntilShutdown(ctx context.Context) (types.TerminationReason, error) {
	if err := s.machine.Wait(ctx, types.StateStopped); err != nil {
		return types.ReasonNone, err
	}
	return s.Reason(), nil
}

// Done 返回到达 stopped 时关闭的 channel
func (s *Service) Done() <-chan struct{} {
	return s.machine.Done(types.StateStopped)
}

// Reason 返回终止原因，尚未关闭时为 ReasonNone
func (s *Service) Reason() types.TerminationReason {
	return types.TerminationReason(s.reason.Load())
}

// State 返回生命周期状态
func (s *Service) State() types.HostState {
	return s.machine.State()
}

// Dispose 本地释放服务，恰好执行一次
func (s *Service) Dispose() {
	s.disposeOnce.Do(func() {
		s.RequestShutdown(types.ReasonDisposed)
	})
}
