// Package tcp 实现 TCP 传输
//
// TCP 传输用于宿主与监督者不在同一台机器的场景，也可在本机回环上使用。
//
// # 地址格式
//
//	tcp://127.0.0.1:9000
//	tcp://[::1]:9000
//	tcp://:0            （空主机 → 127.0.0.1，端口 0 → 由内核分配）
//
// 监听端口 0 时，Listener.Bound() 返回内核分配的实际端口，宿主据此
// 报告可拨号地址。
//
// # 连接选项
//
// 接受与拨出的连接都启用 TCP_NODELAY，RPC 帧较小，避免 Nagle 延迟。
package tcp
