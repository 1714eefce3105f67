//go:build unix

package owner

import (
	"errors"

	"golang.org/x/sys/unix"
)

type systemProber struct{}

// Alive 通过 kill(pid, 0) 探测进程
//
// ESRCH → 进程不存在；EPERM → 进程存在但无权发送信号。
func (systemProber) Alive(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}

	err := unix.Kill(pid, 0)
	switch {
	case err == nil:
	case errors.Is(err, unix.ESRCH):
		return false, nil
	case errors.Is(err, unix.EPERM):
	default:
		return false, err
	}

	if isZombie(pid) {
		return false, nil
	}
	return true, nil
}
