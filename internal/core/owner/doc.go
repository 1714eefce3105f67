// Package owner 实现宿主所有者进程监控
//
// 宿主可以被绑定到一个所有者进程（通常是启动它的监督者）。所有者
// 退出后宿主随之终止，避免留下孤儿进程。
//
// 进程存活由 Prober 判定，默认实现使用 kill(pid, 0)；Linux 上处于
// 僵尸状态（/proc/<pid>/stat 状态为 Z）的进程视为已退出。Monitor 以
// 固定间隔轮询 Prober，首次发现退出时触发一次回调。
package owner
