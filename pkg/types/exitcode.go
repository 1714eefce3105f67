package types

// ============================================================================
//                              进程退出码
// ============================================================================
//
// 外部启动器依据退出码区分"正常停止"、"看门狗超时"与"Owner 退出"，
// 数值一经发布不得修改。

const (
	// ExitDisposed 正常关闭
	ExitDisposed = 0
	// ExitFatal 启动失败（例如绑定错误）
	ExitFatal = 1
	// ExitWatchdogTimeout 看门狗超时
	ExitWatchdogTimeout = 2
	// ExitDisowned Owner 进程退出
	ExitDisowned = 3
	// ExitUsage 启动参数无效
	ExitUsage = 64
)

// ExitCode 返回终止原因对应的进程退出码
//
// ReasonNone 不是合法的终止结果，映射为 ExitFatal。
func (r TerminationReason) ExitCode() int {
	switch r {
	case ReasonDisposed:
		return ExitDisposed
	case ReasonWatchdogTimeout:
		return ExitWatchdogTimeout
	case ReasonDisowned:
		return ExitDisowned
	default:
		return ExitFatal
	}
}

// ReasonFromExitCode 将进程退出码映射回终止原因
//
// 对于 ExitFatal、ExitUsage 及其他未知退出码返回 false。
func ReasonFromExitCode(code int) (TerminationReason, bool) {
	switch code {
	case ExitDisposed:
		return ReasonDisposed, true
	case ExitWatchdogTimeout:
		return ReasonWatchdogTimeout, true
	case ExitDisowned:
		return ReasonDisowned, true
	default:
		return ReasonNone, false
	}
}
