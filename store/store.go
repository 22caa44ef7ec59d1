// Package store implements RecordsStore, a single-file embedded
// key-to-bytes store.
//
// A store file has three contiguous regions: a 16-byte file header, an
// index region that grows upward from offset 16 holding one 80-byte
// entry per live record, and a record-data region running from the
// file header's data-start pointer to end-of-file holding the actual
// payloads. Insert, update, and delete keep those three regions
// consistent by splitting and coalescing free space inside the data
// region and, when the index needs to grow past where the data region
// currently starts, relocating the first data record to end-of-file.
//
// RecordsStore is safe for concurrent use: every public method takes
// the store's single mutex for its entire duration, matching a
// RandomAccessFile-backed store's usual concurrency model — one
// process, one writer at a time, no finer-grained locking, because
// ensureIndexSpace and delete can touch any record in the file. There
// is no journaling and no crash recovery: a process that dies mid
// mutation can leave the file internally inconsistent, and reopening it
// afterward is undefined behavior, not a supported recovery path.
package store

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-recordstore/recordstore/internal/codec"
	"github.com/go-recordstore/recordstore/internal/filelock"
)

// RecordsStore is an open handle to a single store file.
type RecordsStore struct {
	mu sync.Mutex

	file *os.File
	path string

	dataStartPtr uint64
	numRecords   int32

	index map[string]*RecordHeader
}

// Create makes a new store file at path with room in the index region
// for initialCapacity records before the index must grow. It fails with
// ErrStoreExists if path already exists.
func Create(path string, initialCapacity int) (*RecordsStore, error) {
	if pathExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrStoreExists, path)
	}
	if initialCapacity < 0 {
		return nil, fmt.Errorf("recordstore: negative initial capacity %d", initialCapacity)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("recordstore: create %s: %w", path, err)
	}

	dataStartPtr := keySlotOffset(initialCapacity)
	if err := f.Truncate(dataStartPtr); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("recordstore: allocate index region: %w", err)
	}

	s := &RecordsStore{
		file:         f,
		path:         path,
		dataStartPtr: uint64(dataStartPtr),
		numRecords:   0,
		index:        make(map[string]*RecordHeader, initialCapacity),
	}

	if err := s.writeFileHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("recordstore: write file header: %w", err)
	}

	if err := filelock.Lock(f); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("recordstore: lock %s: %w", path, err)
	}

	return s, nil
}

// Open reopens an existing store file at path in the given Mode. It
// fails with ErrStoreNotFound if path does not exist. The in-memory
// index is populated by reading every live index slot.
func Open(path string, mode Mode) (*RecordsStore, error) {
	if !pathExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
	}

	f, err := os.OpenFile(path, mode.flags(), 0644)
	if err != nil {
		return nil, fmt.Errorf("recordstore: open %s: %w", path, err)
	}

	if mode != ModeReadOnly {
		if err := filelock.Lock(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("recordstore: lock %s: %w", path, err)
		}
	}

	s := &RecordsStore{
		file: f,
		path: path,
	}

	numRecords, dataStartPtr, err := s.readFileHeader()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("recordstore: read file header: %w", err)
	}
	s.numRecords = numRecords
	s.dataStartPtr = dataStartPtr
	s.index = make(map[string]*RecordHeader, numRecords)

	for pos := int32(0); pos < numRecords; pos++ {
		key, header, err := s.readIndexEntry(int(pos))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("recordstore: read index slot %d: %w", pos, err)
		}
		s.index[key] = header
	}

	return s, nil
}

// Close releases the underlying file handle and drops the in-memory
// index. Close is idempotent only to the extent *os.File.Close is;
// closing twice returns the file's own already-closed error.
func (s *RecordsStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = nil
	_ = filelock.Unlock(s.file)
	return s.file.Close()
}

// Size returns the number of live records in the store.
func (s *RecordsStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.index)
}

// Exists reports whether key is currently present in the store.
func (s *RecordsStore) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[key]
	return ok
}

// Keys returns a snapshot of the live keys in the store. The slice is
// safe to use after the lock is released; later mutations to the store
// do not affect it.
func (s *RecordsStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.index))
	for k := range s.index {
		keys = append(keys, k)
	}
	return keys
}

// --- file layout & I/O primitives -----------------------------------

// keySlotOffset returns the absolute file offset of the key slot for
// the index entry at position pos.
func keySlotOffset(pos int) int64 {
	return fileHeaderLen + int64(indexEntryLen)*int64(pos)
}

// recordHeaderOffset returns the absolute file offset of the record
// header for the index entry at position pos.
func recordHeaderOffset(pos int) int64 {
	return keySlotOffset(pos) + maxKeyLen
}

func (s *RecordsStore) readFileHeader() (numRecords int32, dataStartPtr uint64, err error) {
	buf := make([]byte, fileHeaderLen)
	if _, err := s.file.ReadAt(buf, 0); err != nil {
		return 0, 0, err
	}
	return codec.DecodeFileHeader(buf)
}

func (s *RecordsStore) writeFileHeader() error {
	buf := codec.EncodeFileHeader(s.numRecords, s.dataStartPtr)
	_, err := s.file.WriteAt(buf, 0)
	return err
}

func (s *RecordsStore) readIndexEntry(pos int) (key string, header *RecordHeader, err error) {
	slot := make([]byte, indexEntryLen)
	if _, err := s.file.ReadAt(slot, keySlotOffset(pos)); err != nil {
		return "", nil, err
	}

	key, err = codec.DecodeKey(slot[:maxKeyLen])
	if err != nil {
		return "", nil, err
	}

	dataPointer, dataCapacity, dataSize, err := codec.DecodeRecordHeader(slot[maxKeyLen:])
	if err != nil {
		return "", nil, err
	}

	header = &RecordHeader{
		dataPointer:   dataPointer,
		dataCapacity:  dataCapacity,
		dataSize:      dataSize,
		indexPosition: pos,
	}
	return key, header, nil
}

// writeRecordHeaderToIndex rewrites only the 16-byte header portion of
// h's current slot, leaving the key bytes untouched.
func (s *RecordsStore) writeRecordHeaderToIndex(h *RecordHeader) error {
	buf := codec.EncodeRecordHeader(h.dataPointer, h.dataCapacity, h.dataSize)
	_, err := s.file.WriteAt(buf, recordHeaderOffset(h.indexPosition))
	return err
}

// addEntryToIndex writes key and h's header into slot pos, sets
// h.indexPosition, and grows num_records by one both in memory and on
// disk. It does not touch s.index; callers do that themselves once the
// write succeeds.
func (s *RecordsStore) addEntryToIndex(key string, h *RecordHeader, pos int) error {
	encodedKey, err := codec.EncodeKey(key)
	if err != nil {
		return err
	}
	if len(encodedKey) > maxKeyLen {
		return fmt.Errorf("%w: %q encodes to %d bytes, max %d", ErrKeyTooLarge, key, len(encodedKey), maxKeyLen)
	}

	slot := make([]byte, maxKeyLen)
	copy(slot, encodedKey)
	if _, err := s.file.WriteAt(slot, keySlotOffset(pos)); err != nil {
		return err
	}

	h.indexPosition = pos
	if err := s.writeRecordHeaderToIndex(h); err != nil {
		return err
	}

	s.numRecords = int32(pos) + 1
	return s.writeFileHeader()
}

// removeEntryFromIndex implements swap-with-last index compaction,
// keeping slots 0..numRecords-1 all live: if victim isn't already the
// last slot, the last slot's key and header are copied into victim's
// slot, and the record count is decremented either way.
func (s *RecordsStore) removeEntryFromIndex(victim *RecordHeader) error {
	lastPos := int(s.numRecords) - 1
	if victim.indexPosition != lastPos {
		lastKey, lastHeader, err := s.readIndexEntry(lastPos)
		if err != nil {
			return err
		}
		lastHeader.indexPosition = victim.indexPosition
		if err := s.addEntryToIndexNoCountBump(lastKey, lastHeader, victim.indexPosition); err != nil {
			return err
		}
		s.index[lastKey] = lastHeader
	}

	s.numRecords--
	return s.writeFileHeader()
}

// addEntryToIndexNoCountBump writes key+header into slot pos without
// touching num_records, used by removeEntryFromIndex which manages the
// count itself.
func (s *RecordsStore) addEntryToIndexNoCountBump(key string, h *RecordHeader, pos int) error {
	encodedKey, err := codec.EncodeKey(key)
	if err != nil {
		return err
	}
	slot := make([]byte, maxKeyLen)
	copy(slot, encodedKey)
	if _, err := s.file.WriteAt(slot, keySlotOffset(pos)); err != nil {
		return err
	}
	h.indexPosition = pos
	return s.writeRecordHeaderToIndex(h)
}

func (s *RecordsStore) readRecordData(h *RecordHeader) ([]byte, error) {
	data := make([]byte, h.dataSize)
	if h.dataSize == 0 {
		return data, nil
	}
	if _, err := s.file.ReadAt(data, int64(h.dataPointer)); err != nil {
		return nil, err
	}
	return data, nil
}

// writeRecordData writes data at h's dataPointer and updates h.dataSize
// to len(data). It does not rewrite h's on-disk header; callers do that
// separately once they've finished mutating h.
func (s *RecordsStore) writeRecordData(h *RecordHeader, data []byte) error {
	if uint32(len(data)) > h.dataCapacity {
		return ErrRecordDoesNotFit
	}
	if len(data) > 0 {
		if _, err := s.file.WriteAt(data, int64(h.dataPointer)); err != nil {
			return err
		}
	}
	h.dataSize = uint32(len(data))
	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
