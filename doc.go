// Package workerhost 提供工作进程隔离宿主的公共入口
//
// 工作进程（worker host）运行在独立的操作系统进程中，通过本机通道
// （Unix 域套接字管道或回环 TCP）暴露控制服务。监督方定期 Ping 维持看门狗，
// 请求 Shutdown 正常关闭；所有者进程退出时宿主自行终止。
//
// # 终止原因与退出码
//
//   - Disposed: 正常关闭，退出码 0
//   - WatchdogTimeout: 超时未收到 Ping，退出码 2
//   - Disowned: 所有者进程退出，退出码 3
//
// 启动失败（例如管道名已被占用）退出码 1，参数无效退出码 64。
//
// # 快速开始
//
// 监督方拉起宿主进程：
//
//	cfg := workerhost.DefaultConfig()
//	cfg.PipeName = "worker-1"
//	cfg.WatchdogTimeout = config.Seconds(30)
//
//	w, err := workerhost.Launch(ctx, workerhost.Spec{
//	    Path:   "/usr/local/bin/workerhost",
//	    Config: cfg,
//	    Owned:  true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	go w.Keepalive(ctx, 10*time.Second)
//	reason, err := w.Stop(ctx)
//
// 连接已运行的宿主：
//
//	c, err := workerhost.Dial(ctx, "tcp://127.0.0.1:4711")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//	err = c.Ping(ctx)
//
// 在当前进程内运行宿主：
//
//	h := workerhost.NewHost(cfg)
//	if err := h.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	reason, _ := h.Run(ctx)
//	os.Exit(workerhost.ExitCode(reason))
package workerhost
