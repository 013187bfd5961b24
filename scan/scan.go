// Package scan reads ZIP archives back header by header, either forwards through the local file headers or backwards
// from the end of central directory record.
package scan

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
)

var (
	// ErrNoEOCDFound is returned if no EOCD signature was found.
	ErrNoEOCDFound = errors.New("end of central directory not found; most likely not a ZIP file")

	// ErrNotReaderAt is returned by FileHeader.Open if the header was scanned from a plain io.Reader.
	ErrNotReaderAt = errors.New("file header was not scanned from an io.ReaderAt")

	// ErrDataDescriptor is returned by Forward for files whose sizes follow the data instead of the local header.
	ErrDataDescriptor = errors.New("file header uses a data descriptor")

	// ErrUnsupportedMethod is returned by FileHeader.Open for files that are not stored.
	ErrUnsupportedMethod = errors.New("unsupported compression method")
)

// CentralDirectory scans from end of stream for ZIP central directory file headers.
//
// Returns the end-of-central-directory (EOCD) record, an iterator over the central directory file headers, and any
// error from searching for and parsing the EOCD.
//
// The method assumes the contents from src contains exactly 1 well-formatted ZIP archive. All bets are off otherwise.
// The iterator stops at the first error. Because src is an io.ReaderAt, [FileHeader.Open] can be used concurrently on
// multiple files in any order.
func CentralDirectory(src io.ReaderAt, size int64) (EOCDRecord, iter.Seq2[*FileHeader, error], error) {
	r, err := FindEOCD(src, size)
	if err != nil {
		return r, nil, err
	}

	if int64(r.CDOffset)+int64(r.CDSize) > r.Offset {
		return r, nil, fmt.Errorf("central directory (offset 0x%x, size %d) overlaps EOCD at 0x%x", r.CDOffset, r.CDSize, r.Offset)
	}

	return r, func(yield func(*FileHeader, error) bool) {
		bufSrc := bufio.NewReaderSize(io.NewSectionReader(src, int64(r.CDOffset), int64(r.CDSize)), 16*1024)
		buf := make([]byte, cdfhLen)

		for i := 0; i < int(r.CDCount); i++ {
			if _, err := io.ReadFull(bufSrc, buf); err != nil {
				yield(nil, fmt.Errorf("read CD file header #%d error: %w", i, err))
				return
			}

			fh, err := unmarshalCDFileHeader(([cdfhLen]byte)(buf), func(b []byte) (int, error) {
				return io.ReadFull(bufSrc, b)
			})
			if err != nil {
				yield(nil, fmt.Errorf("read CD file header #%d error: %w", i, err))
				return
			}

			fh.src = src
			if !yield(&fh, nil) {
				return
			}
		}
	}, nil
}

// Forward scans forwards the given io.Reader for ZIP local file headers.
//
// The headers are returned as an iterator which is stopped at the central directory or at the first error. Only
// archives whose local file headers carry the sizes (no data descriptor) can be scanned this way. The returned headers
// cannot be opened; use CentralDirectory for that.
func Forward(src io.Reader) iter.Seq2[*FileHeader, error] {
	return func(yield func(*FileHeader, error) bool) {
		var (
			// bufSrc wraps src to provide buffered read.
			bufSrc = bufio.NewReaderSize(src, 16*1024)
			// buf is the data slice to read 30 bytes which is the fixed-size part of the local file header.
			buf = make([]byte, lfhLen)
			// offset is the offset of the next local file header.
			offset int64
		)

		for {
			switch sig, err := bufSrc.Peek(4); {
			case errors.Is(err, io.EOF) && len(sig) == 0:
				return
			case err != nil:
				yield(nil, fmt.Errorf("read file header at 0x%x error: %w", offset, err))
				return
			case bytes.Equal(sig, cdfhSigBytes), bytes.Equal(sig, eocdSigBytes):
				return
			}

			if _, err := io.ReadFull(bufSrc, buf); err != nil {
				yield(nil, fmt.Errorf("read file header at 0x%x error: %w", offset, err))
				return
			}

			fh, err := unmarshalLocalFileHeader(([lfhLen]byte)(buf), func(b []byte) (int, error) {
				return io.ReadFull(bufSrc, b)
			})
			if err != nil {
				yield(nil, fmt.Errorf("read file header at 0x%x error: %w", offset, err))
				return
			}
			if fh.Flags&0x8 != 0 {
				yield(nil, fmt.Errorf("file header at 0x%x error: %w", offset, ErrDataDescriptor))
				return
			}

			fh.Offset = offset
			fh.dataOffset += offset
			if !yield(&fh, nil) {
				return
			}

			// advance past the file data.
			if n, err := io.CopyN(io.Discard, bufSrc, int64(fh.CompressedSize64)); err != nil {
				yield(nil, fmt.Errorf("read past file data at 0x%x error: insufficient read: expected %d bytes, got %d: %w", fh.dataOffset, fh.CompressedSize64, n, err))
				return
			}

			offset = fh.dataOffset + int64(fh.CompressedSize64)
		}
	}
}
