package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/transport/tcp"
	"github.com/dep2p/go-workerhost/pkg/types"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	assert.Empty(t, cfg.PipeDir)
	assert.Equal(t, tcp.DefaultDialTimeout, cfg.DialTimeout)
}

func TestConfigFromHost(t *testing.T) {
	assert.Equal(t, NewConfig(), ConfigFromHost(nil))

	hc := config.DefaultHostConfig()
	hc.PipeDir = "/tmp/wh"
	assert.Equal(t, "/tmp/wh", ConfigFromHost(&hc).PipeDir)
}

func TestSet_For(t *testing.T) {
	s := NewSet(NewConfig())

	pt, err := s.For(types.TransportPipe)
	require.NoError(t, err)
	assert.Equal(t, types.TransportPipe, pt.Kind())

	tt, err := s.ForAddress(types.TCPAddress("127.0.0.1", 1))
	require.NoError(t, err)
	assert.Equal(t, types.TransportTCP, tt.Kind())

	_, err = s.For(types.TransportUnknown)
	assert.ErrorIs(t, err, types.ErrUnknownTransport)
}

func TestModule(t *testing.T) {
	hc := config.DefaultHostConfig()
	var s *Set

	app := fxtest.New(t,
		fx.Supply(&hc),
		Module(),
		fx.Populate(&s),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, s)
	_, err := s.For(types.TransportTCP)
	assert.NoError(t, err)
}
