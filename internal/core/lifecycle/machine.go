package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("core/lifecycle")

// ErrInvalidTransition 状态后退或目标无效
var ErrInvalidTransition = errors.New("invalid state transition")

// ============================================================================
//                              状态机
// ============================================================================

// Machine 宿主生命周期状态机
type Machine struct {
	mu sync.RWMutex

	state types.HostState

	// 状态到达信号：key 为状态，关闭表示已到达或越过该状态
	signals map[types.HostState]chan struct{}

	onChange []func(old, new types.HostState)
}

// NewMachine 创建处于 created 状态的状态机
func NewMachine() *Machine {
	m := &Machine{
		state:   types.StateCreated,
		signals: make(map[types.HostState]chan struct{}),
	}
	for s := types.StateCreated; s <= types.StateStopped; s++ {
		m.signals[s] = make(chan struct{})
	}
	close(m.signals[types.StateCreated])
	return m
}

// State 返回当前状态
func (m *Machine) State() types.HostState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// AdvanceTo 推进到指定状态
//
// 只能向前推进；已在目标状态时返回 nil。
func (m *Machine) AdvanceTo(target types.HostState) error {
	m.mu.Lock()
	if _, ok := m.signals[target]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: unknown state %s", ErrInvalidTransition, target)
	}
	if target < m.state {
		current := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: current=%s target=%s", ErrInvalidTransition, current, target)
	}
	if target == m.state {
		m.mu.Unlock()
		return nil
	}
	m.advanceLocked(target)
	return nil
}

// TryAdvance 仅当当前状态为 from 时推进到 to
func (m *Machine) TryAdvance(from, to types.HostState) bool {
	m.mu.Lock()
	if m.state != from || to <= from {
		m.mu.Unlock()
		return false
	}
	if _, ok := m.signals[to]; !ok {
		m.mu.Unlock()
		return false
	}
	m.advanceLocked(to)
	return true
}

// advanceLocked 完成中间状态信号并释放锁后通知回调
func (m *Machine) advanceLocked(target types.HostState) {
	old := m.state
	for s := old; s <= target; s++ {
		ch := m.signals[s]
		select {
		case <-ch:
		default:
			close(ch)
		}
	}
	m.state = target

	callbacks := make([]func(old, new types.HostState), len(m.onChange))
	copy(callbacks, m.onChange)
	m.mu.Unlock()

	logger.Debug("宿主状态推进", "from", old.String(), "to", target.String())
	for _, cb := range callbacks {
		cb(old, target)
	}
}

// Done 返回到达指定状态时关闭的 channel
//
// 未知状态返回永不关闭的 channel。
func (m *Machine) Done(state types.HostState) <-chan struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ch, ok := m.signals[state]; ok {
		return ch
	}
	return make(chan struct{})
}

// Reached 是否已到达或越过指定状态
func (m *Machine) Reached(state types.HostState) bool {
	select {
	case <-m.Done(state):
		return true
	default:
		return false
	}
}

// Wait 等待到达指定状态
func (m *Machine) Wait(ctx context.Context, state types.HostState) error {
	select {
	case <-m.Done(state):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnChange 注册状态变更回调
//
// 回调在推进方的 goroutine 中按注册顺序同步执行，不持有状态机锁。
func (m *Machine) OnChange(cb func(old, new types.HostState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, cb)
}
