package store

import "os"

// Mode is a hint passed to Open describing how the underlying file
// should be opened. The store treats it opaquely — it only ever
// translates a Mode into os.OpenFile flags.
type Mode int

const (
	// ModeReadOnly opens the store for reads only. Any mutating call
	// will fail with the error the underlying file returns for a write
	// or truncate on a read-only descriptor.
	ModeReadOnly Mode = iota

	// ModeReadWrite opens the store for both reads and writes, relying
	// on the OS to batch and flush dirty pages in its own time.
	ModeReadWrite

	// ModeSync opens the store read-write with O_SYNC: every write
	// (data and metadata) is flushed to stable storage before the
	// corresponding call returns.
	ModeSync

	// ModeSyncMetadata opens the store read-write and flushes metadata
	// (but not necessarily every data write) synchronously. The os
	// package exposes no portable flag finer-grained than O_SYNC, so
	// this behaves identically to ModeSync — the distinction exists so
	// callers can express intent even though this implementation can't
	// yet act on it more cheaply.
	ModeSyncMetadata
)

func (m Mode) flags() int {
	switch m {
	case ModeReadOnly:
		return os.O_RDONLY
	case ModeSync, ModeSyncMetadata:
		return os.O_RDWR | os.O_SYNC
	case ModeReadWrite:
		return os.O_RDWR
	default:
		return os.O_RDWR
	}
}
