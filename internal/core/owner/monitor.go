package owner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-workerhost/pkg/lib/log"
)

var logger = log.Logger("core/owner")

// DefaultPollInterval 默认轮询间隔
const DefaultPollInterval = 500 * time.Millisecond

// Option 监控选项
type Option func(*Monitor)

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithPollInterval 设置轮询间隔
func WithPollInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithProber 设置进程探测器
func WithProber(p Prober) Option {
	return func(m *Monitor) {
		if p != nil {
			m.prober = p
		}
	}
}

// Monitor 所有者进程监控
type Monitor struct {
	clock    clock.Clock
	interval time.Duration
	prober   Prober
	onExit   func()

	mu       sync.Mutex
	pid      int
	attached bool

	closed    atomic.Bool
	closeOnce sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup

	fireOnce sync.Once
	done     chan struct{}
}

// New 创建监控
func New(onExit func(), opts ...Option) *Monitor {
	m := &Monitor{
		clock:    clock.New(),
		interval: DefaultPollInterval,
		prober:   DefaultProber(),
		onExit:   onExit,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach 绑定到所有者进程
//
// pid 无效、进程不存在、探测失败或已绑定时返回 false。绑定成功后
// 立即复查一次：若进程已在此间退出，回调同步触发。
func (m *Monitor) Attach(pid int) bool {
	if pid <= 0 {
		return false
	}

	m.mu.Lock()
	if m.attached || m.closed.Load() {
		m.mu.Unlock()
		return false
	}
	alive, err := m.prober.Alive(pid)
	if err != nil {
		m.mu.Unlock()
		logger.Debug("探测所有者进程失败", "pid", pid, "error", err)
		return false
	}
	if !alive {
		m.mu.Unlock()
		logger.Debug("所有者进程不存在", "pid", pid)
		return false
	}
	m.pid = pid
	m.attached = true
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		exited := m.watch(pid)
		m.wg.Done()
		if exited {
			m.fire(pid)
		}
	}()

	if alive, err := m.prober.Alive(pid); err == nil && !alive {
		m.fire(pid)
	}

	logger.Debug("已绑定所有者进程", "pid", pid, "interval", m.interval)
	return true
}

// watch 轮询直到进程退出（返回 true）或监控关闭（返回 false）
func (m *Monitor) watch(pid int) bool {
	ticker := m.clock.Ticker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return false
		case <-m.done:
			return false
		case <-ticker.C:
			alive, err := m.prober.Alive(pid)
			if err != nil {
				logger.Debug("探测所有者进程失败", "pid", pid, "error", err)
				continue
			}
			if !alive {
				return true
			}
		}
	}
}

func (m *Monitor) fire(pid int) {
	if m.closed.Load() {
		return
	}
	m.fireOnce.Do(func() {
		close(m.done)
		logger.Info("所有者进程已退出", "pid", pid)
		if m.onExit != nil {
			m.onExit()
		}
	})
}

// Done 返回所有者退出时关闭的 channel
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Attached 是否已绑定所有者
func (m *Monitor) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attached
}

// PID 返回所有者进程号，未绑定时为 0
func (m *Monitor) PID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pid
}

// Close 停止监控，幂等
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed.Store(true)
		m.mu.Unlock()
		close(m.stop)
	})
	m.wg.Wait()
	return nil
}
