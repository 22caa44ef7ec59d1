package store

// On-disk layout constants. All multi-byte integers in the file are
// big-endian.
const (
	// fileHeaderLen is the length of the file header region at offset 0:
	// a 4-byte record count, an 8-byte data-start pointer, and 4 bytes of
	// reserved padding.
	fileHeaderLen = 16

	// recordHeaderLen is the on-disk size of a RecordHeader: 8-byte
	// dataPointer, 4-byte dataCapacity, 4-byte dataSize.
	recordHeaderLen = 16

	// maxKeyLen is the size in bytes reserved for a key's modified-UTF-8
	// encoding (2-byte length prefix included) inside an index entry.
	maxKeyLen = 64

	// indexEntryLen is one full index slot: key slot + record header.
	indexEntryLen = maxKeyLen + recordHeaderLen
)
