//go:build unix

package launcher

import "syscall"

// sysProcAttr 宿主进程脱离监督方的会话与进程组
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
