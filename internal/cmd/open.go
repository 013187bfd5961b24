package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nguyengg/zipblob/codec"
)

// archiveReader is satisfied by both *os.File and *bytes.Reader.
type archiveReader interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

// archive is an opened ZIP file, decoded into memory first if its name carries a codec extension.
type archive struct {
	archiveReader

	// Name is the name of the ZIP file without any codec extension.
	Name string
	Size int64

	closer io.Closer
}

func (a *archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}

	return nil
}

// openArchive opens the named file, choosing the codec from its extension.
func openArchive(name string) (*archive, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	c := codec.FromFilename(name)
	if _, ok := c.(codec.None); ok {
		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, err
		}

		return &archive{archiveReader: f, Name: name, Size: fi.Size(), closer: f}, nil
	}

	defer f.Close()

	dec, err := c.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("create decoder error: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}

	return &archive{archiveReader: bytes.NewReader(data), Name: strings.TrimSuffix(name, c.Ext()), Size: int64(len(data))}, nil
}
