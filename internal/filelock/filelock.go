// Package filelock provides advisory exclusive locking of a single open
// file, used to keep two processes from opening the same store file for
// writing at once. It is adapted from a directory-lockfile scheme to
// lock the store's own file descriptor directly, since a RecordsStore
// has no separate lockfile sibling.
package filelock

import "os"

// Lock takes an advisory exclusive lock on f's underlying file
// descriptor. It returns an error immediately if the lock is already
// held elsewhere rather than blocking.
func Lock(f *os.File) error {
	return lock(f)
}

// Unlock releases a lock previously taken with Lock.
func Unlock(f *os.File) error {
	return unlock(f)
}
