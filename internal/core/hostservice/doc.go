// Package hostservice 实现宿主控制服务
//
// 宿主控制服务以服务名 "WorkerHost" 注册到通道，对远端只暴露两个方法：
//
//	Ping([token])  存活信号，回显 token；每次调用都会重置看门狗
//	Shutdown()     请求以 Disposed 原因关闭宿主，幂等
//
// # 关闭触发
//
// 进入关闭的触发源有四个：远端 Shutdown、看门狗到期、所有者退出、
// 本地 Dispose。四者并发时只有第一个生效并决定终止原因，其余为
// 空操作。判定通过 atomic.Bool.CompareAndSwap 完成，原因在状态推进
// 之前写入，等待者看到 stopped 时原因已确定。
//
// # 客户端
//
// Proxy 是监督者侧的静态存根：
//
//	p := hostservice.NewProxy(client.GetService(hostservice.ServiceName))
//	if err := p.Ping(ctx); err != nil { ... }
//	_ = p.Shutdown(ctx)
package hostservice
