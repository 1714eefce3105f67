// Package host 实现宿主端点
//
// Endpoint 把传输、服务注册表、看门狗与所有者监控组合成一个运行中的
// 宿主，并报告它停止的原因。
//
// # 生命周期
//
//	ep := host.New(cfg)
//	if err := ep.Initialize(ctx); err != nil {
//	    // 绑定失败等启动错误，*types.TransportBindError
//	}
//	reason, err := ep.Run(ctx) // 阻塞直到 stopped
//
// Initialize 依次：校验配置、选择传输并绑定、注册宿主控制服务、进入
// running、启动看门狗、绑定所有者进程（失败只记录告警）、可选开启
// 指标 HTTP 监听。
//
// # 终止
//
// 四个触发源并发竞争，第一个生效：
//
//	远端 Shutdown     → Disposed
//	看门狗到期        → WatchdogTimeout
//	所有者退出        → Disowned
//	Dispose / ctx 取消 → Disposed
//
// 进入 stopped 后 Run 释放通道、看门狗、所有者监控与指标监听。释放只
// 执行一次，Dispose 可与 Run 并发调用。
package host
