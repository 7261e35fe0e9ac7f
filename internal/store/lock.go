package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockName = "tailor.lock"

var ErrLocked = errors.New("data directory is in use by another engine")

// Lock takes an exclusive, non-blocking lock on dataDir. Callers release it
// with Unlock when they stop serving.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dataDir, lockName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data dir: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return fl, nil
}
