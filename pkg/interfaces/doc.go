// Package interfaces 定义 workerhost 的公共接口
//
// 接口按层次组织，一个接口文件对应一个实现目录：
//
//   - transport.go - 字节流传输（internal/core/transport/pipe、tcp）
//   - channel.go   - RPC 通道与服务（internal/core/channel）
//
// # 依赖规则
//
// interfaces 只依赖 pkg/types，实现包依赖 interfaces，
// 上层组件通过接口组合下层能力，测试可替换任意一层。
package interfaces
