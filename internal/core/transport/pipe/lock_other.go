//go:build !unix

package pipe

import (
	"errors"
	"os"
)

var errLocked = errors.New("lockfile held by another process")

// tryLock 非 Unix 平台不支持管道传输
func tryLock(*os.File) error {
	return errors.New("pipe transport requires a unix platform")
}

func unlock(*os.File) error {
	return nil
}
