package internal

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRightWithSuffix(t *testing.T) {
	tests := []struct {
		text     string
		n        int
		expected string
	}{
		{text: "hello", n: 10, expected: "hello"},
		{text: "hello", n: 5, expected: "hello"},
		{text: "hello, world", n: 5, expected: "hello..."},
		{text: "日本語のファイル", n: 3, expected: "日本語..."},
		{text: "hello", n: 0, expected: "..."},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateRightWithSuffix(tt.text, tt.n, "..."))
		})
	}
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, `[1/3] "my-dir" - `, Prefix(1, 3, "path/to/my-dir"))
	assert.Equal(t, `[2/2] "abcdefghijklmnopqrstuvwxyz0123..." - `, Prefix(2, 2, "abcdefghijklmnopqrstuvwxyz0123456789"))
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), log.New(&buf, "[1/1] - ", 0))

	MustLogger(ctx).Print("hello")
	Logger(ctx).Print("world")
	assert.Equal(t, "[1/1] - hello\n[1/1] - world\n", buf.String())

	assert.NotPanics(t, func() {
		Logger(context.Background()).Print("discarded")
	})
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		text    string
		bucket  string
		key     string
		wantErr bool
	}{
		{text: "s3://bucket/prefix/", bucket: "bucket", key: "prefix/"},
		{text: "s3://bucket/a/b/c.zip", bucket: "bucket", key: "a/b/c.zip"},
		{text: "s3://bucket", bucket: "bucket"},
		{text: "s3://", wantErr: true},
		{text: "https://bucket/key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			bucket, key, err := ParseS3URI(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestOpenExclFile(t *testing.T) {
	basename := filepath.Join(t.TempDir(), "my-dir")

	var names []string
	for range 3 {
		f, err := OpenExclFile(basename, ".zip")
		require.NoError(t, err)
		names = append(names, f.Name())
		assert.NoError(t, f.Close())
	}

	assert.Equal(t, []string{basename + ".zip", basename + "-1.zip", basename + "-2.zip"}, names)

	_, err := OpenExclFile(filepath.Join(basename, "does-not-exist", "file"), ".zip")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProgressLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewProgressLogger(log.New(&buf, "", 0), "read", time.Hour, 2048)

	n, err := l.Write(make([]byte, 1024))
	assert.NoError(t, err)
	assert.Equal(t, 1024, n)
	_, _ = l.Write(make([]byte, 512))
	assert.NoError(t, l.Close())

	// rate.Sometimes always runs the first call.
	assert.Equal(t, "read 1.0 KiB / 2.0 KiB so far\nread 1.5 KiB / 2.0 KiB in total\n", buf.String())
}

func TestProgressLogger_UnknownSize(t *testing.T) {
	var buf bytes.Buffer
	l := NewProgressLogger(log.New(&buf, "", 0), "wrote", time.Hour, 0)

	_, _ = l.Write(make([]byte, 100))
	assert.NoError(t, l.Close())
	assert.Equal(t, "wrote 100 B so far\nwrote 100 B in total\n", buf.String())
}
