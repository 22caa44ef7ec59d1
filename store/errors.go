package store

import "errors"

// Error kinds surfaced by RecordsStore. Callers distinguish them with
// errors.Is; none are retried internally and none trigger a rollback —
// a mutating operation that fails partway through leaves the store in
// an undefined state, per the concurrency and crash-safety notes in the
// package doc comment.
var (
	// ErrStoreExists is returned by Create when the target path already
	// exists.
	ErrStoreExists = errors.New("recordstore: store already exists")

	// ErrStoreNotFound is returned by Open when the target path does not
	// exist.
	ErrStoreNotFound = errors.New("recordstore: store not found")

	// ErrKeyExists is returned by Insert when the key is already present.
	ErrKeyExists = errors.New("recordstore: key exists")

	// ErrKeyNotFound is returned by Read, Update, and Delete when the key
	// is absent.
	ErrKeyNotFound = errors.New("recordstore: key not found")

	// ErrKeyTooLarge is returned by Insert when the key's
	// modified-UTF-8 encoding (length prefix included) exceeds maxKeyLen
	// bytes.
	ErrKeyTooLarge = errors.New("recordstore: key too large")

	// ErrEmptyPayload is returned by Insert when the payload is zero
	// bytes long. A record's dataCapacity must be at least 1; there is
	// no such thing as an allocated record with zero capacity.
	ErrEmptyPayload = errors.New("recordstore: payload must be at least 1 byte")

	// ErrRecordDoesNotFit signals an internal allocator bug: the header
	// handed back by allocate was smaller than the payload it was meant
	// to hold. This should be impossible; seeing it means the allocator
	// or the index is corrupt.
	ErrRecordDoesNotFit = errors.New("recordstore: record does not fit in allocated space")

	// ErrCorrupt is returned when an internal consistency check fails in
	// a way that cannot be attributed to caller error — e.g. a deleted
	// record with neither a live predecessor, a live successor, nor tail
	// position, which means the in-memory index no longer tiles the data
	// region.
	ErrCorrupt = errors.New("recordstore: store is internally inconsistent")
)
