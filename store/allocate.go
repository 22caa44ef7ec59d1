package store

// headerAtOffset performs an O(n) scan of the in-memory index to find
// the live record whose reserved
// [dataPointer, dataPointer+dataCapacity) interval contains off. It
// returns nil if no record covers off — which is a normal outcome (off
// below the data region, or in trailing slack at end-of-file), not an
// error.
func (s *RecordsStore) headerAtOffset(off int64) *RecordHeader {
	for _, h := range s.index {
		if h.containsOffset(off) {
			return h
		}
	}
	return nil
}

// ensureIndexSpace guarantees that the index region can hold
// requiredSlots entries, growing it by relocating live records toward
// end-of-file if necessary.
//
// The empty-store fast path just extends the file and moves
// dataStartPtr forward, since there is no data to protect yet.
// Otherwise, it repeatedly relocates whichever record currently sits at
// the very start of the data region to end-of-file, tightened to
// exactly its live size, advancing dataStartPtr by the record's
// original (not tightened) capacity each time — capturing that original
// capacity before it gets overwritten is the one place this logic is
// easy to get backwards.
func (s *RecordsStore) ensureIndexSpace(requiredSlots int) error {
	endIndexPtr := keySlotOffset(requiredSlots)

	fileLen, err := s.fileLength()
	if err != nil {
		return err
	}

	if endIndexPtr > fileLen && s.numRecords == 0 {
		if err := s.file.Truncate(endIndexPtr); err != nil {
			return err
		}
		s.dataStartPtr = uint64(endIndexPtr)
		return s.writeFileHeader()
	}

	for endIndexPtr > int64(s.dataStartPtr) {
		first := s.headerAtOffset(int64(s.dataStartPtr))
		if first == nil {
			// The data region between dataStartPtr and the first live
			// record (if any) is already slack; nothing to relocate.
			return nil
		}

		data, err := s.readRecordData(first)
		if err != nil {
			return err
		}

		// Snapshot the capacity being vacated before it's overwritten
		// below — dataStartPtr must advance by the full original
		// capacity, not by the tightened one.
		originalCapacity := first.dataCapacity

		fileLen, err = s.fileLength()
		if err != nil {
			return err
		}
		first.dataPointer = uint64(fileLen)
		first.dataCapacity = first.dataSize

		if err := s.file.Truncate(int64(first.dataPointer) + int64(len(data))); err != nil {
			return err
		}
		if err := s.writeRecordData(first, data); err != nil {
			return err
		}
		if err := s.writeRecordHeaderToIndex(first); err != nil {
			return err
		}

		s.dataStartPtr += uint64(originalCapacity)
		if err := s.writeFileHeader(); err != nil {
			return err
		}
	}

	return nil
}

// allocate finds or creates space for a data_length-byte payload and
// returns a RecordHeader describing it. It never writes an index entry
// — callers finish the insert by writing the payload and committing the
// index slot.
//
// dataLength must be at least 1: a record's dataCapacity can never be
// zero, and candidate.freeSpace() < dataLength being an unsigned
// comparison would otherwise always select the first map entry,
// donor or not, for a zero-length request.
//
// The search order over in-memory headers is unspecified (Go map
// iteration order); any donor with enough free space is correct.
func (s *RecordsStore) allocate(dataLength uint32) (*RecordHeader, error) {
	if dataLength == 0 {
		return nil, ErrEmptyPayload
	}

	for _, candidate := range s.index {
		if candidate.freeSpace() < dataLength {
			continue
		}
		newHeader := candidate.split()
		if err := s.writeRecordHeaderToIndex(candidate); err != nil {
			return nil, err
		}
		return newHeader, nil
	}

	fileLen, err := s.fileLength()
	if err != nil {
		return nil, err
	}
	if err := s.file.Truncate(fileLen + int64(dataLength)); err != nil {
		return nil, err
	}
	return &RecordHeader{dataPointer: uint64(fileLen), dataCapacity: dataLength}, nil
}

func (s *RecordsStore) fileLength() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
