package workerhost

import (
	"context"

	"github.com/dep2p/go-workerhost/internal/core/host"
	"github.com/dep2p/go-workerhost/internal/core/launcher"
)

// ════════════════════════════════════════════════════════════════════════════
//                              进程内宿主
// ════════════════════════════════════════════════════════════════════════════

// Host 在当前进程内运行的宿主端点
//
// 使用顺序：Initialize → Run，任意时刻可 Dispose。
type Host = host.Endpoint

// NewHost 创建进程内宿主
func NewHost(cfg Config) *Host {
	return host.New(cfg)
}

// ════════════════════════════════════════════════════════════════════════════
//                              启动器
// ════════════════════════════════════════════════════════════════════════════

type (
	// Spec 宿主进程启动描述
	Spec = launcher.Spec

	// Worker 已启动的宿主进程
	Worker = launcher.Worker
)

// Launch 启动宿主进程并等待其就绪
func Launch(ctx context.Context, spec Spec) (*Worker, error) {
	return launcher.Launch(ctx, spec)
}
