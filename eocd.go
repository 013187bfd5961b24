package zipblob

import (
	"encoding/binary"
)

// EndOfCentralDirectorySize is the size of the end of central directory record without comment.
const EndOfCentralDirectorySize = 22

// EndOfCentralDirectory models the end of central directory record.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#End_of_central_directory_record_(EOCD).
type EndOfCentralDirectory struct {
	// DiskNumber is the number of this disk. Always 0.
	DiskNumber uint16
	// CDDiskOffset is the disk where central directory starts. Always 0.
	CDDiskOffset uint16
	// CDCountOnDisk is the number of central directory records on this disk.
	CDCountOnDisk uint16
	// CDCount is the total number of central directory records.
	CDCount uint16
	// CDSize is the size of the central directory in bytes.
	CDSize uint32
	// CDOffset is the offset of start of central directory, relative to start of archive.
	CDOffset uint32
}

// Marshal returns the 22-byte record.
func (r EndOfCentralDirectory) Marshal() []byte {
	return r.AppendTo(make([]byte, 0, EndOfCentralDirectorySize))
}

// AppendTo appends the 22-byte record to b and returns the extended slice.
func (r EndOfCentralDirectory) AppendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, eocdSig)
	b = binary.LittleEndian.AppendUint16(b, r.DiskNumber)
	b = binary.LittleEndian.AppendUint16(b, r.CDDiskOffset)
	b = binary.LittleEndian.AppendUint16(b, r.CDCountOnDisk)
	b = binary.LittleEndian.AppendUint16(b, r.CDCount)
	b = binary.LittleEndian.AppendUint32(b, r.CDSize)
	b = binary.LittleEndian.AppendUint32(b, r.CDOffset)
	return binary.LittleEndian.AppendUint16(b, 0) // comment length
}

// layout is the result of the sizing pass over a list of entries.
type layout struct {
	localSize int64
	cdSize    int64
}

// newEndOfCentralDirectory sums local and central directory sizes over entries in a single pass.
//
// Returns ErrSizeOverflow if the totals or the entry count don't fit in their fields.
func newEndOfCentralDirectory(entries []*Entry) (EndOfCentralDirectory, layout, error) {
	var l layout
	for _, e := range entries {
		l.localSize += int64(e.Size())
		l.cdSize += int64(e.CentralDirectoryHeaderSize())
	}

	if len(entries) > 0xffff || l.localSize > 0xffffffff || l.cdSize > 0xffffffff {
		return EndOfCentralDirectory{}, l, ErrSizeOverflow
	}

	n := uint16(len(entries))
	return EndOfCentralDirectory{
		CDCountOnDisk: n,
		CDCount:       n,
		CDSize:        uint32(l.cdSize),
		CDOffset:      uint32(l.localSize),
	}, l, nil
}
