// Package types 定义 workerhost 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 workerhost 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - enums.go    - TransportKind, HostState, TerminationReason
//   - address.go  - Address（通道端点地址）
//   - exitcode.go - 进程退出码映射
//   - errors.go   - 公共错误定义（TransportBindError, TransportCallError, RemoteError）
//
// # 终止原因
//
// 每次宿主运行恰好产生一个 TerminationReason：
//
//	Disposed         显式/正常关闭（Shutdown RPC 或本地 Dispose）
//	WatchdogTimeout  超时窗口内未收到 Ping
//	Disowned         Owner 进程已退出
package types
