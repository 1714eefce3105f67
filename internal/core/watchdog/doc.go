// Package watchdog 实现存活看门狗
//
// 看门狗在固定超时内未被 Reset 即触发一次到期回调。宿主在每次 Ping
// 时 Reset；监督者停止 Ping 后宿主自行终止。
//
// 到期判定与 Reset 在同一把锁下互斥：每次 Reset 递增代数，旧定时器
// 触发时发现代数已变即放弃。回调恰好执行一次，且在锁外执行。
package watchdog
