// Package channel 实现宿主与监督者之间的双向 RPC 通道
//
// 通道分两种角色：
//
//   - Server：绑定到传输地址，接受任意数量的连接，按服务名把请求分派给
//     已注册的服务对象。每个请求在独立 goroutine 中执行，同一连接上的
//     响应写入串行化。
//   - Client：连接到 Server，在一条连接上按调用 ID 复用并发调用。
//
// # 错误分类
//
//	*types.TransportCallError  传输失败（连接断开、超时、通道已关闭）
//	*types.RemoteError         服务端返回的错误（未知服务、服务错误、panic）
//
// 两类错误可分别用 errors.Is(err, types.ErrTransportCall) 与
// errors.Is(err, types.ErrRemote) 区分。
//
// # 关闭
//
// Server.Close 先停止接受连接，再在 ShutdownGrace 内等待进行中的调用
// 写完响应，最后关闭所有连接并释放监听地址。
package channel
