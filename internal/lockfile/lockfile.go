// Package lockfile implements the advisory workspace lock of spec.md
// §5/§9: any mutating command acquires it at the start and releases it
// on exit; read-only commands never touch it. A second mutating
// process attempting to acquire a held lock fails with
// ErrorKind::Locked rather than blocking.
package lockfile

import (
	"os"

	"github.com/jinconf/jin/internal/jerr"
)

// Lock holds an acquired advisory lock on a single file. The zero
// value is not usable; construct via Acquire.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes a non-blocking exclusive lock on path, creating it if
// necessary. It fails jerr.Locked if another process already holds it.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, jerr.Storage(err)
	}

	if err := tryLockExclusive(f); err != nil {
		f.Close()
		return nil, jerr.Locked(path)
	}

	return &Lock{path: path, file: f}, nil
}

// Release unlocks and closes the lock file. It does not remove it:
// the file persists so later Acquire calls reuse it.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := unlock(l.file); err != nil {
		l.file.Close()
		return jerr.Storage(err)
	}
	return l.file.Close()
}
