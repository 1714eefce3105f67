package transport

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-workerhost/config"
	"github.com/dep2p/go-workerhost/internal/core/transport/pipe"
	"github.com/dep2p/go-workerhost/internal/core/transport/tcp"
	"github.com/dep2p/go-workerhost/pkg/interfaces"
	"github.com/dep2p/go-workerhost/pkg/lib/log"
	"github.com/dep2p/go-workerhost/pkg/types"
)

var logger = log.Logger("core/transport")

// Config 传输配置
type Config struct {
	// PipeDir 管道套接字目录，空表示系统临时目录
	PipeDir string

	// DialTimeout TCP 拨号超时
	DialTimeout time.Duration
}

// NewConfig 创建默认配置
func NewConfig() Config {
	return Config{
		DialTimeout: tcp.DefaultDialTimeout,
	}
}

// ConfigFromHost 从宿主配置创建传输配置
func ConfigFromHost(cfg *config.HostConfig) Config {
	c := NewConfig()
	if cfg != nil {
		c.PipeDir = cfg.PipeDir
	}
	return c
}

// Set 可用传输集合
type Set struct {
	transports map[types.TransportKind]interfaces.Transport
}

// NewSet 创建包含 pipe 与 tcp 的传输集合
func NewSet(cfg Config) *Set {
	var pipeOpts []pipe.Option
	if cfg.PipeDir != "" {
		pipeOpts = append(pipeOpts, pipe.WithDir(cfg.PipeDir))
	}

	s := &Set{transports: make(map[types.TransportKind]interfaces.Transport, 2)}
	s.Add(pipe.NewTransport(pipeOpts...))
	s.Add(tcp.NewTransport(tcp.WithDialTimeout(cfg.DialTimeout)))

	logger.Debug("传输集合已创建", "pipeDir", cfg.PipeDir, "dialTimeout", cfg.DialTimeout)
	return s
}

// Add 添加或替换某一类型的传输
func (s *Set) Add(t interfaces.Transport) {
	s.transports[t.Kind()] = t
}

// For 返回指定类型的传输
func (s *Set) For(kind types.TransportKind) (interfaces.Transport, error) {
	t, ok := s.transports[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTransport, kind)
	}
	return t, nil
}

// ForAddress 返回可处理该地址的传输
func (s *Set) ForAddress(addr types.Address) (interfaces.Transport, error) {
	return s.For(addr.Kind)
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(
			ProvideConfig,
			NewSet,
		),
	)
}

// ProvideConfig 从宿主配置提供传输配置
func ProvideConfig(cfg *config.HostConfig) Config {
	return ConfigFromHost(cfg)
}
