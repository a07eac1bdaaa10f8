//go:build !unix

package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// dirLock falls back to an exclusively created lock file where flock is
// unavailable. A crash leaves the file behind and it must be removed by hand.
type dirLock struct {
	path string
	f    *os.File
}

func lockDir(dir string) (*dirLock, error) {
	path := filepath.Join(dir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
		}
		return nil, err
	}
	return &dirLock{path: path, f: f}, nil
}

func (l *dirLock) release() error {
	err := l.f.Close()
	if rmErr := os.Remove(l.path); err == nil {
		err = rmErr
	}
	return err
}
