// Package launcher 实现监督方：拉起宿主进程并与之通信
//
// Launch 以独立会话启动宿主可执行文件，读取 stdout 上的就绪行获得地址，
// 连接客户端通道后返回 *Worker。Worker 负责保活、请求关闭，
// 并把进程退出码映射回终止原因。
package launcher
