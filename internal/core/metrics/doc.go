// Package metrics 提供宿主监控指标收集
//
// 基于 prometheus/client_golang，每个宿主实例持有独立的 Registry，
// 同一进程内可以运行多个互不干扰的宿主（测试常用）。
//
// # 指标
//
//	workerhost_rpc_calls_total{service,method,outcome}   RPC 调用次数
//	workerhost_rpc_call_duration_seconds{service,method} RPC 处理耗时
//	workerhost_rpc_inflight                              正在处理的调用数
//	workerhost_channel_bytes_total{direction}            通道收发字节数
//	workerhost_watchdog_resets_total                     看门狗重置次数
//	workerhost_terminations_total{reason}                宿主终止次数
//
// # 快速开始
//
//	m := metrics.New()
//	m.ObserveCall("WorkerHost", "Ping", metrics.OutcomeOK, time.Millisecond)
//	http.Handle("/metrics", m.Handler())
//
// nil *Metrics 的所有方法都是空操作，组件无需判空。
package metrics
