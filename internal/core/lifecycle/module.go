package lifecycle

import (
	"go.uber.org/fx"
)

// Module 返回 Fx 模块
//
// 提供宿主生命周期状态机作为单例。
func Module() fx.Option {
	return fx.Module("lifecycle",
		fx.Provide(NewMachine),
	)
}
