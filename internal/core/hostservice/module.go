package hostservice

import "go.uber.org/fx"

// Module 提供宿主控制服务，依赖 *lifecycle.Machine
var Module = fx.Module("hostservice",
	fx.Provide(New),
)
