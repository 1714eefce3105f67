// Package main 提供 workerhost 宿主进程入口
//
// 由外部启动器以子进程方式拉起，典型参数：
//
//	workerhost -pipe worker-1 -timeout 30 -owner 4242
//	workerhost -transport tcp -port 0 -timeout 0
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dep2p/go-workerhost/internal/hostcmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := hostcmd.Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
