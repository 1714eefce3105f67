// Package pipe 实现本地管道传输
//
// 本地管道基于 Unix 域套接字，只在同一台机器上可用，延迟最低，
// 适用于宿主与监督者确定同机部署的场景。
//
// # 地址
//
// 管道名映射到套接字路径：
//
//	worker-1          → <dir>/workerhost-worker-1.sock（dir 默认 os.TempDir()）
//	/run/w/host.sock  → 原样使用（绝对路径）
//
// # 独占绑定
//
// 绑定时对 "<path>.lock" 加非阻塞排他 flock：
//   - 锁已被持有 → types.ErrAddressInUse（另一宿主正在使用该名称）
//   - 锁获取成功但套接字文件已存在 → 视为崩溃残留，删除后重新监听
//
// 关闭时删除套接字与锁文件并释放锁，之后同名地址可再次绑定。
package pipe
