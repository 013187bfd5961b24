package scan

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/nguyengg/zipblob/dostime"
)

const (
	lfhSig  = 0x04034b50
	cdfhSig = 0x02014b50
	eocdSig = 0x06054b50

	lfhLen  = 30
	cdfhLen = 46
	eocdLen = 22
)

var (
	lfhSigBytes  = putUint32(lfhSig)
	cdfhSigBytes = putUint32(cdfhSig)
	eocdSigBytes = putUint32(eocdSig)
)

func putUint32(v uint32) (b []byte) {
	b = make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// FileHeader is a local or central directory file header along with where it was found.
type FileHeader struct {
	zip.FileHeader

	// Offset is the offset of the local file header, relative to start of archive.
	Offset int64

	// dataOffset is the offset of the file data; 0 if not known yet.
	dataOffset int64
	src        io.ReaderAt
}

// Open returns a reader to the stored content of the file.
//
// Only stored (uncompressed) files can be opened; ErrUnsupportedMethod is returned otherwise. ErrNotReaderAt is
// returned if the header was produced by Forward.
func (f *FileHeader) Open() (io.Reader, error) {
	if f.src == nil {
		return nil, ErrNotReaderAt
	}
	if f.Method != zip.Store {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMethod, f.Method)
	}

	if f.dataOffset == 0 {
		b := make([]byte, lfhLen)
		if _, err := f.src.ReadAt(b, f.Offset); err != nil {
			return nil, fmt.Errorf("read local file header at 0x%x error: %w", f.Offset, err)
		}

		lfh, err := unmarshalLocalFileHeader(([lfhLen]byte)(b), func(c []byte) (int, error) {
			return f.src.ReadAt(c, f.Offset+lfhLen)
		})
		if err != nil {
			return nil, fmt.Errorf("read local file header at 0x%x error: %w", f.Offset, err)
		}
		if lfh.Name != f.Name {
			return nil, fmt.Errorf("mismatched local file header name, got %q, expected %q", lfh.Name, f.Name)
		}

		f.dataOffset = f.Offset + lfh.dataOffset
	}

	return io.NewSectionReader(f.src, f.dataOffset, int64(f.CompressedSize64)), nil
}

// unmarshalLocalFileHeader decodes a local file header; read supplies the name and extra field that follow the
// fixed-size part, possibly with an empty slice.
//
// Offset is left at 0 and dataOffset is relative to the start of the header.
func unmarshalLocalFileHeader(b [lfhLen]byte, read func(b []byte) (int, error)) (fh FileHeader, err error) {
	data := &struct {
		Signature        uint32
		ReaderVersion    uint16
		Flags            uint16
		Method           uint16
		ModifiedTime     uint16
		ModifiedDate     uint16
		CRC32            uint32
		CompressedSize   uint32
		UncompressedSize uint32
		FileNameLength   uint16
		ExtraFieldLength uint16
	}{}

	if !bytes.Equal(lfhSigBytes, b[:4]) {
		return fh, fmt.Errorf("mismatched signature, got 0x%x, expected 0x%x", b[:4], lfhSigBytes)
	}

	if err = binary.Read(bytes.NewReader(b[:]), binary.LittleEndian, data); err != nil {
		return fh, fmt.Errorf("unmarshal error: %w", err)
	}

	fh = FileHeader{
		FileHeader: zip.FileHeader{
			ReaderVersion:      data.ReaderVersion,
			Flags:              data.Flags,
			Method:             data.Method,
			Modified:           dostime.ToTime(data.ModifiedDate, data.ModifiedTime),
			ModifiedTime:       data.ModifiedTime,
			ModifiedDate:       data.ModifiedDate,
			CRC32:              data.CRC32,
			CompressedSize:     data.CompressedSize,
			UncompressedSize:   data.UncompressedSize,
			CompressedSize64:   uint64(data.CompressedSize),
			UncompressedSize64: uint64(data.UncompressedSize),
		},
	}
	n, m := int(data.FileNameLength), int(data.ExtraFieldLength)
	nm := make([]byte, n+m)
	switch readN, err := read(nm); {
	case err != nil && !errors.Is(err, io.EOF):
		return fh, fmt.Errorf("read variable-size data error: %w", err)
	case readN < n+m:
		return fh, fmt.Errorf("read variable-size data error: insufficient read: expected at least %d bytes, got %d", n+m, readN)
	default:
		fh.Name, fh.Extra = string(nm[:n]), nm[n:]
	}

	fh.dataOffset = int64(lfhLen + n + m)
	return fh, nil
}

// unmarshalCDFileHeader decodes a central directory file header; read supplies the name, extra field, and comment
// that follow the fixed-size part in that order.
func unmarshalCDFileHeader(b [cdfhLen]byte, read func(b []byte) (int, error)) (fh FileHeader, err error) {
	data := &struct {
		Signature         uint32
		CreatorVersion    uint16
		ReaderVersion     uint16
		Flags             uint16
		Method            uint16
		ModifiedTime      uint16
		ModifiedDate      uint16
		CRC32             uint32
		CompressedSize    uint32
		UncompressedSize  uint32
		FileNameLength    uint16
		ExtraFieldLength  uint16
		FileCommentLength uint16
		DiskNumber        uint16
		InternalAttrs     uint16
		ExternalAttrs     uint32
		Offset            uint32
	}{}

	if !bytes.Equal(cdfhSigBytes, b[:4]) {
		return fh, fmt.Errorf("mismatched signature, got 0x%x, expected 0x%x", b[:4], cdfhSigBytes)
	}

	if err = binary.Read(bytes.NewReader(b[:]), binary.LittleEndian, data); err != nil {
		return fh, fmt.Errorf("unmarshal error: %w", err)
	}

	fh = FileHeader{
		FileHeader: zip.FileHeader{
			CreatorVersion:     data.CreatorVersion,
			ReaderVersion:      data.ReaderVersion,
			Flags:              data.Flags,
			Method:             data.Method,
			Modified:           dostime.ToTime(data.ModifiedDate, data.ModifiedTime),
			ModifiedTime:       data.ModifiedTime,
			ModifiedDate:       data.ModifiedDate,
			CRC32:              data.CRC32,
			CompressedSize:     data.CompressedSize,
			UncompressedSize:   data.UncompressedSize,
			CompressedSize64:   uint64(data.CompressedSize),
			UncompressedSize64: uint64(data.UncompressedSize),
			ExternalAttrs:      data.ExternalAttrs,
		},
		Offset: int64(data.Offset),
	}
	n, m, k := int(data.FileNameLength), int(data.ExtraFieldLength), int(data.FileCommentLength)
	nmk := make([]byte, n+m+k)
	switch readN, err := read(nmk); {
	case err != nil && !errors.Is(err, io.EOF):
		return fh, fmt.Errorf("read variable-size data error: %w", err)
	case readN < n+m+k:
		return fh, fmt.Errorf("read variable-size data error: insufficient read: expected at least %d bytes, got %d", n+m+k, readN)
	default:
		fh.Name, fh.Extra, fh.Comment = string(nmk[:n]), nmk[n:n+m], string(nmk[n+m:])
	}

	return fh, nil
}
