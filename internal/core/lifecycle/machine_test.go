package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-workerhost/pkg/types"
)

func TestMachine_Initial(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, types.StateCreated, m.State())
	assert.True(t, m.Reached(types.StateCreated))
	assert.False(t, m.Reached(types.StateRunning))
}

func TestMachine_AdvanceForward(t *testing.T) {
	m := NewMachine()

	require.NoError(t, m.AdvanceTo(types.StateRunning))
	require.NoError(t, m.AdvanceTo(types.StateRunning))
	assert.Equal(t, types.StateRunning, m.State())

	require.NoError(t, m.AdvanceTo(types.StateStopped))
	assert.True(t, m.Reached(types.StateShuttingDown), "中间状态信号应一并完成")
	assert.True(t, m.Reached(types.StateStopped))
}

func TestMachine_AdvanceBackwards(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.AdvanceTo(types.StateShuttingDown))

	err := m.AdvanceTo(types.StateRunning)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, types.StateShuttingDown, m.State())

	assert.ErrorIs(t, m.AdvanceTo(types.HostState(99)), ErrInvalidTransition)
}

func TestMachine_TryAdvance(t *testing.T) {
	m := NewMachine()

	assert.False(t, m.TryAdvance(types.StateRunning, types.StateShuttingDown))
	assert.True(t, m.TryAdvance(types.StateCreated, types.StateRunning))
	assert.False(t, m.TryAdvance(types.StateRunning, types.StateCreated))
	assert.False(t, m.TryAdvance(types.StateRunning, types.StateRunning))
}

func TestMachine_TryAdvanceConcurrent(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.AdvanceTo(types.StateRunning))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.TryAdvance(types.StateRunning, types.StateShuttingDown) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, types.StateShuttingDown, m.State())
}

func TestMachine_Wait(t *testing.T) {
	m := NewMachine()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = m.AdvanceTo(types.StateStopped)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx, types.StateShuttingDown))

	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	m2 := NewMachine()
	assert.ErrorIs(t, m2.Wait(ctx2, types.StateRunning), context.Canceled)
}

func TestMachine_OnChange(t *testing.T) {
	m := NewMachine()

	var got [][2]types.HostState
	m.OnChange(func(old, new types.HostState) {
		got = append(got, [2]types.HostState{old, new})
	})

	require.NoError(t, m.AdvanceTo(types.StateRunning))
	require.NoError(t, m.AdvanceTo(types.StateStopped))
	_ = m.AdvanceTo(types.StateStopped)

	assert.Equal(t, [][2]types.HostState{
		{types.StateCreated, types.StateRunning},
		{types.StateRunning, types.StateStopped},
	}, got)
}

func TestModule(t *testing.T) {
	var m *Machine
	app := fxtest.New(t, Module(), fx.Populate(&m))
	defer app.RequireStart().RequireStop()

	require.NotNil(t, m)
	assert.Equal(t, types.StateCreated, m.State())
}
