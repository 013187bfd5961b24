// Package codec wraps a written archive in an optional outer compression layer.
package codec

import (
	"fmt"
	"io"
	"strings"
)

// Codec has methods to create compressor/encoder and decompressor/decoder.
type Codec interface {
	// NewDecoder creates a decoder to decompress contents from the given io.Reader.
	NewDecoder(src io.Reader) (io.ReadCloser, error)
	// NewEncoder creates an encoder to compress contents from the given io.Writer.
	NewEncoder(dst io.Writer) (io.WriteCloser, error)
	// Ext returns the extension appended to ".zip" for files written with this codec.
	Ext() string
	// ContentType returns the content type of files written with this codec.
	ContentType() string
}

// DefaultName is the name of the default codec.
const DefaultName = "none"

// FromName returns a Codec from the given name.
//
// The empty string is the same as DefaultName.
func FromName(name string) (Codec, error) {
	switch name {
	case "", "none":
		return None{}, nil
	case "xz":
		return Xz{}, nil
	case "zstd", "zst":
		return Zstd{}, nil
	default:
		return nil, fmt.Errorf("unknown codec: %q", name)
	}
}

// FromFilename returns the Codec whose extension name ends with, or None if there is none.
func FromFilename(name string) Codec {
	for _, c := range []Codec{Xz{}, Zstd{}} {
		if strings.HasSuffix(name, c.Ext()) {
			return c
		}
	}

	return None{}
}

// None implements Codec by passing contents through unchanged.
type None struct{}

var _ Codec = None{}

func (c None) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(src), nil
}

func (c None) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{dst}, nil
}

func (c None) Ext() string {
	return ""
}

func (c None) ContentType() string {
	return "application/zip"
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
