package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipblob"
	"github.com/nguyengg/zipblob/codec"
	"github.com/nguyengg/zipblob/dostime"
	"github.com/nguyengg/zipblob/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDir creates a directory that looks like this:
//
//	my-dir/a.txt
//	my-dir/path/b.txt
func newTestDir(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "my-dir")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "path"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello, world!"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "path", "b.txt"), []byte("Capoo is Hungry."), 0o644))
	return root
}

func newCreate(dir, out string) *Create {
	c := &Create{Time: "1995-07-10T06:11:33Z", OutputDir: flags.Filename(out)}
	c.Args.Dirs = []flags.Filename{flags.Filename(dir)}
	return c
}

func TestCreate(t *testing.T) {
	dir, out := newTestDir(t), t.TempDir()

	require.NoError(t, newCreate(dir, out).Execute(nil))

	zr, err := zip.OpenReader(filepath.Join(out, "my-dir.zip"))
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 2)
	assert.Equal(t, "my-dir/a.txt", zr.File[0].Name)
	assert.Equal(t, "my-dir/path/b.txt", zr.File[1].Name)

	for _, f := range zr.File {
		assert.Equal(t, zip.Store, f.Method)
		assert.True(t, time.Date(1995, time.July, 10, 6, 11, 32, 0, time.UTC).Equal(f.Modified), f.Modified)
	}

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, "Capoo is Hungry.", string(data))
}

func TestCreate_Reproducible(t *testing.T) {
	dir, out := newTestDir(t), t.TempDir()

	require.NoError(t, newCreate(dir, out).Execute(nil))
	require.NoError(t, newCreate(dir, out).Execute(nil))

	a, err := os.ReadFile(filepath.Join(out, "my-dir.zip"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(out, "my-dir-1.zip"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCreate_JunkRootAndCodec(t *testing.T) {
	dir, out := newTestDir(t), t.TempDir()

	c := newCreate(dir, out)
	c.JunkRoot = true
	c.Codec = "xz"
	require.NoError(t, c.Execute(nil))

	f, err := os.Open(filepath.Join(out, "my-dir.zip.xz"))
	require.NoError(t, err)
	defer f.Close()

	dec, err := codec.Xz{}.NewDecoder(f)
	require.NoError(t, err)
	data, err := io.ReadAll(dec)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "a.txt", zr.File[0].Name)
	assert.Equal(t, "path/b.txt", zr.File[1].Name)
}

func TestCreate_LogsBuildOnce(t *testing.T) {
	dir, out := newTestDir(t), t.TempDir()

	c := newCreate(dir, out)
	require.NoError(t, c.init(context.Background()))

	var buf bytes.Buffer
	ctx := internal.WithLogger(context.Background(), log.New(&buf, "", 0))
	require.NoError(t, c.create(ctx, dir))

	assert.Equal(t, 1, strings.Count(buf.String(), "built archive with 2 entries"), buf.String())
	assert.Contains(t, buf.String(), "archive digest is sha256:")
}

func TestCreate_Errors(t *testing.T) {
	dir, out := newTestDir(t), t.TempDir()

	t.Run("not a directory", func(t *testing.T) {
		assert.Error(t, newCreate(filepath.Join(dir, "a.txt"), out).Execute(nil))
	})

	t.Run("max-bytes", func(t *testing.T) {
		c := newCreate(dir, out)
		c.MaxBytes = "10B"
		assert.Error(t, c.Execute(nil))

		_, err := os.Stat(filepath.Join(out, "my-dir.zip"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("time", func(t *testing.T) {
		c := newCreate(dir, out)
		c.Time = "yesterday"
		assert.ErrorContains(t, c.Execute(nil), "invalid --time")
	})

	t.Run("positional arguments", func(t *testing.T) {
		assert.Error(t, newCreate(dir, out).Execute([]string{"extra"}))
	})
}

func TestList(t *testing.T) {
	dir, out := newTestDir(t), t.TempDir()
	require.NoError(t, newCreate(dir, out).Execute(nil))

	var buf bytes.Buffer
	c := &List{out: &buf}
	c.Args.Files = []flags.Filename{flags.Filename(filepath.Join(out, "my-dir.zip"))}
	require.NoError(t, c.Execute(nil))

	s := buf.String()
	assert.Contains(t, s, "2 entries")
	assert.Contains(t, s, "my-dir/a.txt")
	assert.Contains(t, s, "my-dir/path/b.txt")
	assert.Contains(t, s, "58988d13")
	assert.Contains(t, s, "1995-07-10 06:11:32")
}

func TestList_NotZip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "not.zip")
	require.NoError(t, os.WriteFile(name, bytes.Repeat([]byte("hello, world!"), 10), 0o644))

	c := &List{out: io.Discard}
	c.Args.Files = []flags.Filename{flags.Filename(name)}
	assert.Error(t, c.Execute(nil))
}

func TestVerify(t *testing.T) {
	dir, out := newTestDir(t), t.TempDir()
	require.NoError(t, newCreate(dir, out).Execute(nil))

	name := filepath.Join(out, "my-dir.zip")
	c := &Verify{}
	c.Args.Files = []flags.Filename{flags.Filename(name)}
	assert.NoError(t, c.Execute(nil))

	// "hello, world!" starts right after the first local file header.
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	offset := 30 + len("my-dir/a.txt")
	require.Equal(t, "hello", string(data[offset:offset+5]))
	data[offset] = 'j'

	corrupted := filepath.Join(out, "corrupted.zip")
	require.NoError(t, os.WriteFile(corrupted, data, 0o644))

	c.Args.Files = []flags.Filename{flags.Filename(corrupted)}
	assert.Error(t, c.Execute(nil))
}

func TestVerify_DirectoryEntries(t *testing.T) {
	data, err := zipblob.BuildArchive(map[string][]byte{
		"my-dir/":           nil,
		"my-dir/a.txt":      []byte("hello, world!"),
		"my-dir/path/":      nil,
		"my-dir/path/b.txt": []byte("Capoo is Hungry."),
	}, zipblob.WithClock(dostime.FixedTime(time.Date(1995, time.July, 10, 6, 11, 33, 0, time.UTC))))
	require.NoError(t, err)

	name := filepath.Join(t.TempDir(), "my-dir.zip")
	require.NoError(t, os.WriteFile(name, data, 0o644))

	count, err := verify(context.Background(), name)
	assert.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestVerifyAndList_Compressed(t *testing.T) {
	tests := []struct {
		name  string
		codec string
		file  string
	}{
		{name: "xz", codec: "xz", file: "my-dir.zip.xz"},
		{name: "zstd", codec: "zstd", file: "my-dir.zip.zst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, out := newTestDir(t), t.TempDir()

			c := newCreate(dir, out)
			c.Codec = tt.codec
			require.NoError(t, c.Execute(nil))

			name := filepath.Join(out, tt.file)

			v := &Verify{}
			v.Args.Files = []flags.Filename{flags.Filename(name)}
			assert.NoError(t, v.Execute(nil))

			var buf bytes.Buffer
			l := &List{out: &buf}
			l.Args.Files = []flags.Filename{flags.Filename(name)}
			require.NoError(t, l.Execute(nil))
			assert.Contains(t, buf.String(), "2 entries")
			assert.Contains(t, buf.String(), "my-dir/a.txt")
			assert.Contains(t, buf.String(), "my-dir/path/b.txt")
		})
	}
}

func TestVerifyLocalHeaders_Mismatch(t *testing.T) {
	dir, out := newTestDir(t), t.TempDir()
	require.NoError(t, newCreate(dir, out).Execute(nil))

	data, err := os.ReadFile(filepath.Join(out, "my-dir.zip"))
	require.NoError(t, err)

	// the first local file header's name.
	data[30] = 'M'
	name := filepath.Join(out, "renamed.zip")
	require.NoError(t, os.WriteFile(name, data, 0o644))

	_, err = verify(context.Background(), name)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestNewParser(t *testing.T) {
	p := NewParser()
	assert.Equal(t, "zipblob", p.Name)
	assert.NotNil(t, p.Find("create"))
	assert.NotNil(t, p.Find("list"))
	assert.NotNil(t, p.Find("verify"))
}

func TestVerify_Concurrent(t *testing.T) {
	out := t.TempDir()

	c := &Verify{MaxConcurrency: 4}
	for range 3 {
		require.NoError(t, newCreate(newTestDir(t), out).Execute(nil))
	}
	for _, name := range []string{"my-dir.zip", "my-dir-1.zip", "my-dir-2.zip"} {
		c.Args.Files = append(c.Args.Files, flags.Filename(filepath.Join(out, name)))
	}
	assert.NoError(t, c.Execute(nil))

	c.Args.Files = append(c.Args.Files, flags.Filename(filepath.Join(out, "does-not-exist.zip")))
	assert.ErrorContains(t, c.Execute(nil), "failed to verify 1/4 archives")
}
