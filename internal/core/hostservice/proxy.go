package hostservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dep2p/go-workerhost/pkg/interfaces"
)

// ErrPingMismatch Ping 回显与发送的 token 不一致
var ErrPingMismatch = errors.New("ping echo mismatch")

// Proxy 宿主控制服务的客户端存根
type Proxy struct {
	remote interfaces.Proxy
}

// NewProxy 基于通道代理创建存根
func NewProxy(remote interfaces.Proxy) *Proxy {
	return &Proxy{remote: remote}
}

// Ping 发送随机 token 并校验回显
func (p *Proxy) Ping(ctx context.Context) error {
	token := uuid.NewString()
	got, err := p.PingToken(ctx, token)
	if err != nil {
		return err
	}
	if got != token {
		return fmt.Errorf("%w: sent %s, got %s", ErrPingMismatch, token, got)
	}
	return nil
}

// PingToken 发送指定 token 并返回回显
func (p *Proxy) PingToken(ctx context.Context, token string) (string, error) {
	res, err := p.remote.Call(ctx, MethodPing, token)
	if err != nil {
		return "", err
	}
	echo, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected result type %T", ErrPingMismatch, res)
	}
	return echo, nil
}

// Shutdown 请求宿主关闭
func (p *Proxy) Shutdown(ctx context.Context) error {
	_, err := p.remote.Call(ctx, MethodShutdown)
	return err
}
