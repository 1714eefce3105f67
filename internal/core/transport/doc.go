// Package transport 实现传输选择
//
// 宿主与监督者之间的通道可以运行在两种传输上：
//
//   - pipe：Unix 域套接字，同机使用（internal/core/transport/pipe）
//   - tcp：TCP 套接字，可跨机使用（internal/core/transport/tcp）
//
// Set 按 types.TransportKind 选择具体实现。两种传输只负责字节流，
// 帧与 RPC 信封由通道层处理，切换传输不改变服务契约。
package transport
