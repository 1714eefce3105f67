// Package lifecycle 提供宿主生命周期状态机
//
// 宿主状态只能单向推进：
//
//	created → running → shutting_down → stopped
//
// 允许跳过中间状态（例如初始化失败时 created → stopped），推进到某
// 状态会同时完成之前所有状态的信号，等待者可以用 Done/Wait 等待任一
// 状态到达。
package lifecycle
