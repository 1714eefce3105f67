//go:build !unix

package launcher

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
