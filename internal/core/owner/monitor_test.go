package owner

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProber 可控的进程探测器
type fakeProber struct {
	alive atomic.Bool
	fail  atomic.Bool
	calls atomic.Int32
}

func newFakeProber(alive bool) *fakeProber {
	p := &fakeProber{}
	p.alive.Store(alive)
	return p
}

func (p *fakeProber) Alive(int) (bool, error) {
	p.calls.Add(1)
	if p.fail.Load() {
		return false, errors.New("probe failed")
	}
	return p.alive.Load(), nil
}

func TestMonitor_AttachInvalid(t *testing.T) {
	m := New(nil, WithProber(newFakeProber(true)))
	defer m.Close()

	assert.False(t, m.Attach(0))
	assert.False(t, m.Attach(-5))
	assert.False(t, m.Attached())
	assert.Equal(t, 0, m.PID())
}

func TestMonitor_AttachDeadProcess(t *testing.T) {
	var fired atomic.Int32
	m := New(func() { fired.Add(1) }, WithProber(newFakeProber(false)))
	defer m.Close()

	assert.False(t, m.Attach(1234))
	assert.False(t, m.Attached())
	assert.Equal(t, int32(0), fired.Load())
}

func TestMonitor_AttachProbeError(t *testing.T) {
	p := newFakeProber(true)
	p.fail.Store(true)
	m := New(nil, WithProber(p))
	defer m.Close()

	assert.False(t, m.Attach(1234))
}

func TestMonitor_AttachTwice(t *testing.T) {
	m := New(nil, WithProber(newFakeProber(true)), WithClock(clock.NewMock()))
	defer m.Close()

	require.True(t, m.Attach(1234))
	assert.True(t, m.Attached())
	assert.Equal(t, 1234, m.PID())
	assert.False(t, m.Attach(5678))
	assert.Equal(t, 1234, m.PID())
}

func TestMonitor_DetectsExit(t *testing.T) {
	mock := clock.NewMock()
	p := newFakeProber(true)
	var fired atomic.Int32
	m := New(func() { fired.Add(1) }, WithProber(p), WithClock(mock), WithPollInterval(time.Second))
	defer m.Close()

	require.True(t, m.Attach(1234))
	mock.Add(3 * time.Second)
	assert.Equal(t, int32(0), fired.Load())

	p.alive.Store(false)
	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return fired.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)

	select {
	case <-m.Done():
	default:
		t.Fatal("Done not closed after owner exit")
	}

	mock.Add(10 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestMonitor_ImmediateRecheck(t *testing.T) {
	p := &sequenceProber{results: []bool{true, false}}
	var fired atomic.Int32
	m := New(func() { fired.Add(1) }, WithProber(p), WithClock(clock.NewMock()))
	defer m.Close()

	require.True(t, m.Attach(1234))
	// 复查在 Attach 返回前同步触发
	assert.Equal(t, int32(1), fired.Load())
}

func TestMonitor_ProbeErrorKeepsWatching(t *testing.T) {
	mock := clock.NewMock()
	p := newFakeProber(true)
	var fired atomic.Int32
	m := New(func() { fired.Add(1) }, WithProber(p), WithClock(mock), WithPollInterval(time.Second))
	defer m.Close()

	require.True(t, m.Attach(1234))
	p.fail.Store(true)
	for i := 0; i < 5; i++ {
		mock.Add(time.Second)
	}
	assert.Equal(t, int32(0), fired.Load())

	p.fail.Store(false)
	p.alive.Store(false)
	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return fired.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestMonitor_CloseStopsWatching(t *testing.T) {
	mock := clock.NewMock()
	p := newFakeProber(true)
	var fired atomic.Int32
	m := New(func() { fired.Add(1) }, WithProber(p), WithClock(mock))

	require.True(t, m.Attach(1234))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	p.alive.Store(false)
	mock.Add(time.Minute)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
	assert.False(t, m.Attach(5678))
}

func TestMonitor_CloseFromCallback(t *testing.T) {
	mock := clock.NewMock()
	p := newFakeProber(true)
	done := make(chan struct{})
	var m *Monitor
	m = New(func() {
		_ = m.Close()
		close(done)
	}, WithProber(p), WithClock(mock), WithPollInterval(time.Second))

	require.True(t, m.Attach(1234))
	p.alive.Store(false)
	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}

// sequenceProber 按顺序返回预设结果，耗尽后重复最后一个
type sequenceProber struct {
	results []bool
	n       atomic.Int32
}

func (p *sequenceProber) Alive(int) (bool, error) {
	i := int(p.n.Add(1)) - 1
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	return p.results[i], nil
}
