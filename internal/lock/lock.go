// Package lock keeps two supervisors from running in the same work dir,
// where the second one would truncate the logs of the first one's jobs.
package lock

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const FileName = ".hlsrun.lock"

var ErrLocked = errors.New("work dir is locked by another hlsrun")

type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock of dir, waiting at most timeout for a concurrent
// holder. A zero timeout tries once.
func Acquire(ctx context.Context, dir string, timeout time.Duration) (*Lock, error) {
	fl := flock.New(filepath.Join(dir, FileName))

	var locked bool
	var err error
	if timeout <= 0 {
		locked, err = fl.TryLock()
	} else {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		locked, err = fl.TryLockContext(ctx, 50*time.Millisecond)
		if errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, fl.Path())
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Path() string {
	return l.fl.Path()
}

func (l *Lock) Release() error {
	return l.fl.Unlock()
}
