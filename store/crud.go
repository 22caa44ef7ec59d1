package store

import (
	"fmt"

	"github.com/go-recordstore/recordstore/internal/codec"
)

// Record pairs a key with the bytes Read returned for it.
type Record struct {
	Key   string
	Bytes []byte
}

// Insert adds a new record. It fails with ErrKeyExists if key is
// already present, or ErrKeyTooLarge if key's modified-UTF-8 encoding
// exceeds the 64-byte index slot — in which case the store is left
// untouched.
func (s *RecordsStore) Insert(key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[key]; ok {
		return fmt.Errorf("%w: %q", ErrKeyExists, key)
	}
	if err := checkKeyFits(key); err != nil {
		return err
	}
	if len(payload) == 0 {
		return ErrEmptyPayload
	}

	if err := s.ensureIndexSpace(int(s.numRecords) + 1); err != nil {
		return err
	}

	header, err := s.allocate(uint32(len(payload)))
	if err != nil {
		return err
	}

	if err := s.writeRecordData(header, payload); err != nil {
		return err
	}

	if err := s.addEntryToIndex(key, header, int(s.numRecords)); err != nil {
		return err
	}

	s.index[key] = header
	return nil
}

// Read returns the current bytes stored for key. It fails with
// ErrKeyNotFound if key is absent.
func (s *RecordsStore) Read(key string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, ok := s.index[key]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	data, err := s.readRecordData(header)
	if err != nil {
		return Record{}, err
	}
	return Record{Key: key, Bytes: data}, nil
}

// Update replaces the bytes stored for an existing key. It fails with
// ErrKeyNotFound if key is absent. If the new payload no longer fits in
// the record's current capacity, the record is relocated by deleting
// and reinserting it — the only path by which Update changes a
// record's dataPointer.
func (s *RecordsStore) Update(key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, ok := s.index[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	if uint32(len(payload)) > header.dataCapacity {
		if err := s.delete(key); err != nil {
			return err
		}
		return s.insert(key, payload)
	}

	if err := s.writeRecordData(header, payload); err != nil {
		return err
	}
	return s.writeRecordHeaderToIndex(header)
}

// Delete removes a record, reclaiming its data-region space into a
// neighbor (or truncating the file, if it was the last record), and
// compacts its index slot via swap-with-last. It fails with
// ErrKeyNotFound if key is absent.
func (s *RecordsStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.delete(key)
}

// insert repeats Insert's steps without taking the lock, and delete is
// the lock-free core of Delete; Update's relocate path uses both so it
// doesn't try to re-acquire the store's own mutex.
func (s *RecordsStore) insert(key string, payload []byte) error {
	if _, ok := s.index[key]; ok {
		return fmt.Errorf("%w: %q", ErrKeyExists, key)
	}
	if err := checkKeyFits(key); err != nil {
		return err
	}
	if len(payload) == 0 {
		return ErrEmptyPayload
	}

	if err := s.ensureIndexSpace(int(s.numRecords) + 1); err != nil {
		return err
	}

	header, err := s.allocate(uint32(len(payload)))
	if err != nil {
		return err
	}

	if err := s.writeRecordData(header, payload); err != nil {
		return err
	}

	if err := s.addEntryToIndex(key, header, int(s.numRecords)); err != nil {
		return err
	}

	s.index[key] = header
	return nil
}

func (s *RecordsStore) delete(key string) error {
	victim, ok := s.index[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	fileLen, err := s.fileLength()
	if err != nil {
		return err
	}

	victimEnd := int64(victim.dataPointer) + int64(victim.dataCapacity)

	switch {
	case fileLen == victimEnd:
		// Tail of the file: just shrink it.
		if err := s.file.Truncate(int64(victim.dataPointer)); err != nil {
			return err
		}

	default:
		if predecessor := s.headerAtOffset(int64(victim.dataPointer) - 1); predecessor != nil {
			predecessor.dataCapacity += victim.dataCapacity
			if err := s.writeRecordHeaderToIndex(predecessor); err != nil {
				return err
			}
		} else if successor := s.headerAtOffset(victimEnd); successor != nil {
			data, err := s.readRecordData(successor)
			if err != nil {
				return err
			}
			successor.dataPointer = victim.dataPointer
			successor.dataCapacity += victim.dataCapacity
			if err := s.writeRecordData(successor, data); err != nil {
				return err
			}
			if err := s.writeRecordHeaderToIndex(successor); err != nil {
				return err
			}
		} else {
			return fmt.Errorf("%w: record for %q has neither a live predecessor nor successor", ErrCorrupt, key)
		}
	}

	if err := s.removeEntryFromIndex(victim); err != nil {
		return err
	}
	delete(s.index, key)
	return nil
}

// checkKeyFits reports ErrKeyTooLarge without mutating anything if
// key's modified-UTF-8 encoding (length prefix included) would overflow
// the fixed-size key slot.
func checkKeyFits(key string) error {
	encoded, err := codec.EncodeKey(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyTooLarge, err)
	}
	if len(encoded) > maxKeyLen {
		return fmt.Errorf("%w: %q encodes to %d bytes, max %d", ErrKeyTooLarge, key, len(encoded), maxKeyLen)
	}
	return nil
}
