package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/nguyengg/zipblob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	data, err := zipblob.BuildArchive(map[string][]byte{
		"Hello.txt": []byte("Capoo is Hungry."),
		"a/b.txt":   bytes.Repeat([]byte("hello, world!"), 100),
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		ext         string
		contentType string
	}{
		{name: "none", ext: "", contentType: "application/zip"},
		{name: "xz", ext: ".xz", contentType: "application/x-xz"},
		{name: "zstd", ext: ".zst", contentType: "application/zstd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, c.Ext())
			assert.Equal(t, tt.contentType, c.ContentType())

			var buf bytes.Buffer
			enc, err := c.NewEncoder(&buf)
			require.NoError(t, err)
			_, err = enc.Write(data)
			require.NoError(t, err)
			require.NoError(t, enc.Close())

			dec, err := c.NewDecoder(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(dec)
			require.NoError(t, err)
			assert.NoError(t, dec.Close())
			assert.Equal(t, data, got)
		})
	}
}

func TestFromName(t *testing.T) {
	c, err := FromName("")
	assert.NoError(t, err)
	assert.Equal(t, None{}, c)

	c, err = FromName("zst")
	assert.NoError(t, err)
	assert.Equal(t, Zstd{}, c)

	_, err = FromName("rar")
	assert.Error(t, err)
}

func TestFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		expected Codec
	}{
		{name: "my-dir.zip", expected: None{}},
		{name: "my-dir.zip.xz", expected: Xz{}},
		{name: "path/to/my-dir.zip.zst", expected: Zstd{}},
		{name: "xz", expected: None{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromFilename(tt.name))
		})
	}
}
