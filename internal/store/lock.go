package store

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

var ErrRunLocked = errors.New("another crawl holds the database lock")

// AcquireRunLock takes a non-blocking exclusive lock next to the database file so
// two crawl processes never interleave on one database. Unlock the result when done.
func AcquireRunLock(dbPath string) (*flock.Flock, error) {
	fl := flock.New(dbPath + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("run lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrRunLocked, fl.Path())
	}
	return fl, nil
}
