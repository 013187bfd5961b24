package scan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// EOCDRecord is the end of central directory record that closes every ZIP file.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#End_of_central_directory_record_(EOCD). ZIP64 archives, whose
// record carries 0xffff and 0xffffffff placeholders, are not supported.
type EOCDRecord struct {
	// DiskNumber and CDDiskOffset are 0 for single-disk archives.
	DiskNumber   uint16
	CDDiskOffset uint16
	// CDCountOnDisk and CDCount are the number of central directory file headers.
	CDCountOnDisk uint16
	CDCount       uint16
	// CDSize is the byte length of the central directory.
	CDSize uint32
	// CDOffset is where the central directory starts.
	CDOffset uint32
	// Comment is the archive comment that trails the fixed-size record.
	Comment string
	// Offset is where the record itself starts.
	Offset int64
}

// maxEOCDSearch is the fixed-size record plus the longest possible comment.
const maxEOCDSearch = eocdLen + 0xffff

// FindEOCD searches the last 64 KiB of src backwards for the EOCD record.
//
// Since the comment may itself contain the signature, a candidate is only accepted if its comment ends exactly at the
// end of src.
func FindEOCD(src io.ReaderAt, size int64) (EOCDRecord, error) {
	if size < eocdLen {
		return EOCDRecord{}, fmt.Errorf("find EOCD: insufficient data: need at least %d bytes, got %d", eocdLen, size)
	}

	start := max(size-maxEOCDSearch, 0)
	b := make([]byte, size-start)
	if n, err := src.ReadAt(b, start); err != nil && !(errors.Is(err, io.EOF) && n == len(b)) {
		return EOCDRecord{}, fmt.Errorf("find EOCD: read error: %w", err)
	}

	for end := len(b); end > 0; {
		i := bytes.LastIndex(b[:end], eocdSigBytes)
		if i == -1 {
			break
		}

		if r, ok := parseEOCDRecord(b[i:]); ok {
			r.Offset = start + int64(i)
			return r, nil
		}

		end = i
	}

	return EOCDRecord{}, ErrNoEOCDFound
}

// parseEOCDRecord decodes b as the fixed-size record followed by exactly CommentLength bytes of comment.
func parseEOCDRecord(b []byte) (r EOCDRecord, ok bool) {
	if len(b) < eocdLen {
		return r, false
	}

	var fixed struct {
		Signature     uint32
		DiskNumber    uint16
		CDDiskOffset  uint16
		CDCountOnDisk uint16
		CDCount       uint16
		CDSize        uint32
		CDOffset      uint32
		CommentLength uint16
	}
	if err := binary.Read(bytes.NewReader(b[:eocdLen]), binary.LittleEndian, &fixed); err != nil {
		return r, false
	}
	if int(fixed.CommentLength) != len(b)-eocdLen {
		return r, false
	}

	return EOCDRecord{
		DiskNumber:    fixed.DiskNumber,
		CDDiskOffset:  fixed.CDDiskOffset,
		CDCountOnDisk: fixed.CDCountOnDisk,
		CDCount:       fixed.CDCount,
		CDSize:        fixed.CDSize,
		CDOffset:      fixed.CDOffset,
		Comment:       string(b[eocdLen:]),
	}, true
}
