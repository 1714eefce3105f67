// Package hostcmd 实现宿主进程入口逻辑
//
// Main 解析命令行参数，合并配置文件与 WORKERHOST_* 环境变量，
// 启动宿主并阻塞到宿主终止，最终返回与终止原因对应的退出码。
//
// 配置优先级（从高到低）：
//  1. 命令行参数（仅显式设置的参数）
//  2. 环境变量（WORKERHOST_* 前缀）
//  3. 配置文件（-config）
//  4. 默认值
//
// 宿主绑定成功后在 stdout 打印一行就绪标记：
//
//	WORKERHOST READY pipe://worker-1
//
// 启动器读取这一行获得实际地址（TCP 端口 0 时为内核分配的端口）。
package hostcmd
