package codec

import (
	"io"

	"github.com/ulikunitz/xz"
)

// Xz implements Codec for xz compression algorithm.
type Xz struct{}

var _ Codec = Xz{}

func (c Xz) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}

func (c Xz) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(dst)
}

func (c Xz) Ext() string {
	return ".xz"
}

func (c Xz) ContentType() string {
	return "application/x-xz"
}
