package watchdog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-workerhost/pkg/lib/log"
)

var logger = log.Logger("core/watchdog")

var (
	// ErrAlreadyStarted 看门狗已启动
	ErrAlreadyStarted = errors.New("watchdog already started")

	// ErrInvalidTimeout 超时为负
	ErrInvalidTimeout = errors.New("invalid watchdog timeout")
)

// Option 看门狗选项
type Option func(*Watchdog)

// WithClock 设置时钟（测试使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(w *Watchdog) {
		w.clock = c
	}
}

// Watchdog 存活看门狗
type Watchdog struct {
	clock    clock.Clock
	onExpire func()

	mu      sync.Mutex
	timeout time.Duration
	timer   *clock.Timer
	gen     uint64
	started bool
	stopped bool
	fired   bool
}

// New 创建看门狗
func New(onExpire func(), opts ...Option) *Watchdog {
	w := &Watchdog{
		clock:    clock.New(),
		onExpire: onExpire,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start 以指定超时启动看门狗
//
// timeout 为 0 表示禁用：Start 成功但永不到期。
func (w *Watchdog) Start(timeout time.Duration) error {
	if timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, timeout)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	w.started = true
	w.timeout = timeout

	if timeout == 0 || w.stopped {
		logger.Debug("看门狗已禁用")
		return nil
	}
	w.arm()
	logger.Debug("看门狗已启动", "timeout", timeout)
	return nil
}

// Reset 重新计时
//
// 禁用、已到期或已停止时返回 false。
func (w *Watchdog) Reset() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started || w.timeout == 0 || w.stopped || w.fired {
		return false
	}
	w.arm()
	return true
}

// Stop 停止看门狗，之后不再触发
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Expired 是否已到期
func (w *Watchdog) Expired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Timeout 返回超时设置
func (w *Watchdog) Timeout() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeout
}

// arm 作废旧定时器并按当前代数重新计时，调用方持有锁
func (w *Watchdog) arm() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
	}
	gen := w.gen
	w.timer = w.clock.AfterFunc(w.timeout, func() {
		w.expire(gen)
	})
}

func (w *Watchdog) expire(gen uint64) {
	w.mu.Lock()
	if gen != w.gen || w.stopped || w.fired {
		w.mu.Unlock()
		return
	}
	w.fired = true
	w.timer = nil
	timeout := w.timeout
	w.mu.Unlock()

	logger.Info("看门狗到期", "timeout", timeout)
	if w.onExpire != nil {
		w.onExpire()
	}
}
