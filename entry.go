package zipblob

import (
	"encoding/binary"
)

const (
	// MaxNameLength is the longest file name, in bytes, that fits in the 16-bit name length field.
	MaxNameLength = 0xffff

	// LocalFileHeaderFixedSize is the size of the local file header excluding the file name.
	LocalFileHeaderFixedSize = 30
	// CentralDirectoryHeaderFixedSize is the size of the central directory file header excluding the file name.
	CentralDirectoryHeaderFixedSize = 46

	// VersionNeeded is the "version needed to extract" field: 1.0, enough for stored files.
	VersionNeeded uint16 = 0x000a
	// VersionMadeBy is the "version made by" field: MS-DOS attribute compatibility, APPNOTE version 6.3.
	VersionMadeBy uint16 = 0x003f
	// MethodStore is the only compression method written.
	MethodStore uint16 = 0

	lfhSig  = 0x04034b50
	cdfhSig = 0x02014b50
	eocdSig = 0x06054b50
)

// Entry is one file of the archive along with every value needed to render its headers.
//
// Entry is immutable; all values are computed by the Factory (or NewEntry) before any serialisation happens.
type Entry struct {
	name    string
	body    []byte
	crc     uint32
	dosTime uint16
	dosDate uint16
	offset  uint32
}

// NewEntry creates a new Entry.
//
// body is retained, not copied. Returns a NameTooLongError if name is longer than MaxNameLength bytes, or
// ErrSizeOverflow if body does not fit in the 32-bit size fields.
func NewEntry(name string, body []byte, crc uint32, dosTime, dosDate uint16, offset uint32) (*Entry, error) {
	if n := len(name); n > MaxNameLength {
		return nil, NameTooLongError{Name: name, Length: n}
	}
	if uint64(len(body)) > uint64(^uint32(0)) {
		return nil, ErrSizeOverflow
	}

	return &Entry{
		name:    name,
		body:    body,
		crc:     crc,
		dosTime: dosTime,
		dosDate: dosDate,
		offset:  offset,
	}, nil
}

// Name returns the file name as stored in the archive.
func (e *Entry) Name() string {
	return e.name
}

// Body returns the uncompressed content. The returned slice must not be modified.
func (e *Entry) Body() []byte {
	return e.body
}

// CRC32 returns the checksum of Body.
func (e *Entry) CRC32() uint32 {
	return e.crc
}

// ModifiedTime returns the DOS time field.
func (e *Entry) ModifiedTime() uint16 {
	return e.dosTime
}

// ModifiedDate returns the DOS date field.
func (e *Entry) ModifiedDate() uint16 {
	return e.dosDate
}

// Offset returns the offset of the local file header from the start of the archive.
func (e *Entry) Offset() uint32 {
	return e.offset
}

// LocalFileHeaderSize is 30 plus the byte length of the name.
func (e *Entry) LocalFileHeaderSize() int {
	return LocalFileHeaderFixedSize + len(e.name)
}

// CentralDirectoryHeaderSize is 46 plus the byte length of the name.
func (e *Entry) CentralDirectoryHeaderSize() int {
	return CentralDirectoryHeaderFixedSize + len(e.name)
}

// Size is the number of bytes the entry occupies in the local section: its local file header plus its body.
func (e *Entry) Size() int {
	return e.LocalFileHeaderSize() + len(e.body)
}

// LocalFileHeader returns a new slice containing the local file header.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Local_file_header.
func (e *Entry) LocalFileHeader() []byte {
	return e.AppendLocalFileHeader(make([]byte, 0, e.LocalFileHeaderSize()))
}

// AppendLocalFileHeader appends the local file header to b and returns the extended slice.
func (e *Entry) AppendLocalFileHeader(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, lfhSig)
	b = binary.LittleEndian.AppendUint16(b, VersionNeeded)
	b = binary.LittleEndian.AppendUint16(b, 0) // general purpose bit flag
	b = binary.LittleEndian.AppendUint16(b, MethodStore)
	b = e.appendModified(b)
	b = e.appendCRCAndSizes(b)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(e.name)))
	b = binary.LittleEndian.AppendUint16(b, 0) // extra field length
	return append(b, e.name...)
}

// CentralDirectoryHeader returns a new slice containing the central directory file header.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Central_directory_file_header_(CDFH).
func (e *Entry) CentralDirectoryHeader() []byte {
	return e.AppendCentralDirectoryHeader(make([]byte, 0, e.CentralDirectoryHeaderSize()))
}

// AppendCentralDirectoryHeader appends the central directory file header to b and returns the extended slice.
func (e *Entry) AppendCentralDirectoryHeader(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, cdfhSig)
	b = binary.LittleEndian.AppendUint16(b, VersionMadeBy)
	b = binary.LittleEndian.AppendUint16(b, VersionNeeded)
	b = binary.LittleEndian.AppendUint16(b, 0) // general purpose bit flag
	b = binary.LittleEndian.AppendUint16(b, MethodStore)
	b = e.appendModified(b)
	b = e.appendCRCAndSizes(b)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(e.name)))
	b = binary.LittleEndian.AppendUint16(b, 0) // extra field length
	b = binary.LittleEndian.AppendUint16(b, 0) // file comment length
	b = binary.LittleEndian.AppendUint16(b, 0) // disk number where file starts
	b = binary.LittleEndian.AppendUint16(b, 0) // internal file attributes
	b = binary.LittleEndian.AppendUint32(b, 0) // external file attributes
	b = binary.LittleEndian.AppendUint32(b, e.offset)
	return append(b, e.name...)
}

func (e *Entry) appendModified(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, e.dosTime)
	return binary.LittleEndian.AppendUint16(b, e.dosDate)
}

// stored files have identical compressed and uncompressed sizes, both being the length of the body alone.
func (e *Entry) appendCRCAndSizes(b []byte) []byte {
	size := uint32(len(e.body))
	b = binary.LittleEndian.AppendUint32(b, e.crc)
	b = binary.LittleEndian.AppendUint32(b, size)
	return binary.LittleEndian.AppendUint32(b, size)
}
