package store

// RecordHeader is the in-memory mirror of one index entry's fixed-width
// fields (everything but the key). indexPosition is never persisted as
// part of the 16-byte on-disk header — it is the zero-based slot number
// the entry currently lives at, derived when the entry is read or
// written.
type RecordHeader struct {
	dataPointer   uint64
	dataCapacity  uint32
	dataSize      uint32
	indexPosition int
}

// freeSpace returns the number of unused bytes at the tail of the
// record's reserved capacity.
func (h *RecordHeader) freeSpace() uint32 {
	return h.dataCapacity - h.dataSize
}

// containsOffset reports whether the absolute file offset off falls
// inside this record's reserved [dataPointer, dataPointer+dataCapacity)
// interval.
func (h *RecordHeader) containsOffset(off int64) bool {
	if off < 0 {
		return false
	}
	start := int64(h.dataPointer)
	end := start + int64(h.dataCapacity)
	return off >= start && off < end
}

// split carves a new header out of h's trailing free space and shrinks
// h to hold exactly its live bytes. The caller is responsible for
// persisting both h's new header and the new header it receives back.
func (h *RecordHeader) split() *RecordHeader {
	newHeader := &RecordHeader{
		dataPointer:  h.dataPointer + uint64(h.dataSize),
		dataCapacity: h.freeSpace(),
	}
	h.dataCapacity = h.dataSize
	return newHeader
}
