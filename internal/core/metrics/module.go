package metrics

import (
	"go.uber.org/fx"
)

// Module 是 metrics 的 Fx 模块
//
// 每个 fx.App 得到独立的 *Metrics（及其 Registry）。
var Module = fx.Module("metrics",
	fx.Provide(New),
)
