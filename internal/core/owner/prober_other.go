//go:build !unix

package owner

import "errors"

type systemProber struct{}

func (systemProber) Alive(int) (bool, error) {
	return false, errors.New("owner monitoring requires a unix platform")
}
