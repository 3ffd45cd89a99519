package dedup

import (
	"fmt"
	"os"
)

// AcquireLock guards the store against overlapping scheduled runs by
// creating path exclusively. It returns a release function, or an error when
// another run holds the lock. The design assumes non-overlapping runs; this
// guard is for schedules where that cannot be promised.
func AcquireLock(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("lock file %s exists: another run appears to be active", path)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return func() {
		os.Remove(path)
	}, nil
}
