package codec

import (
	"encoding/binary"
	"fmt"
)

// RecordHeaderLen is the on-disk size of one record header: an 8-byte
// data pointer, a 4-byte data capacity, and a 4-byte data size, all
// big-endian.
const RecordHeaderLen = 16

// EncodeRecordHeader marshals a record header into exactly
// RecordHeaderLen bytes.
func EncodeRecordHeader(dataPointer uint64, dataCapacity, dataSize uint32) []byte {
	buf := make([]byte, RecordHeaderLen)
	binary.BigEndian.PutUint64(buf[0:8], dataPointer)
	binary.BigEndian.PutUint32(buf[8:12], dataCapacity)
	binary.BigEndian.PutUint32(buf[12:16], dataSize)
	return buf
}

// DecodeRecordHeader is the inverse of EncodeRecordHeader.
func DecodeRecordHeader(buf []byte) (dataPointer uint64, dataCapacity, dataSize uint32, err error) {
	if len(buf) < RecordHeaderLen {
		return 0, 0, 0, fmt.Errorf("codec: record header too short: %d bytes", len(buf))
	}
	dataPointer = binary.BigEndian.Uint64(buf[0:8])
	dataCapacity = binary.BigEndian.Uint32(buf[8:12])
	dataSize = binary.BigEndian.Uint32(buf[12:16])
	return dataPointer, dataCapacity, dataSize, nil
}

// FileHeaderLen is the on-disk size of the file header: a 4-byte record
// count, an 8-byte data-start pointer, and 4 reserved bytes.
const FileHeaderLen = 16

// EncodeFileHeader marshals the file header. The 4 reserved trailing
// bytes are always written as zero.
func EncodeFileHeader(numRecords int32, dataStartPtr uint64) []byte {
	buf := make([]byte, FileHeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(numRecords))
	binary.BigEndian.PutUint64(buf[4:12], dataStartPtr)
	return buf
}

// DecodeFileHeader is the inverse of EncodeFileHeader. The reserved
// trailing bytes are not validated — readers are not required to check
// them.
func DecodeFileHeader(buf []byte) (numRecords int32, dataStartPtr uint64, err error) {
	if len(buf) < FileHeaderLen {
		return 0, 0, fmt.Errorf("codec: file header too short: %d bytes", len(buf))
	}
	numRecords = int32(binary.BigEndian.Uint32(buf[0:4]))
	dataStartPtr = binary.BigEndian.Uint64(buf[4:12])
	return numRecords, dataStartPtr, nil
}
