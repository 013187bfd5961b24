// Package mapping produces the name-to-body mapping consumed by zipblob.Factory.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ErrTooLarge is returned by FromDir if the total size of files exceeds Options.MaxBytes.
var ErrTooLarge = errors.New("directory contents too large")

// Options customises FromDir.
type Options struct {
	// JunkRoot drops the directory's own name from every name.
	//
	// Given directory "my-dir" containing a.txt and path/b.txt, the names are "my-dir/a.txt" and "my-dir/path/b.txt"
	// by default, or "a.txt" and "path/b.txt" if JunkRoot is true.
	JunkRoot bool

	// MaxBytes limits the total number of bytes read. The zero value indicates no limit.
	//
	// The whole mapping is held in memory.
	MaxBytes int64

	// Progress receives every byte that is read if given.
	//
	// It can be a progress bar or a progress logger.
	Progress io.Writer
}

// FromDir reads every regular file under root into memory.
//
// Names use forward slashes regardless of the host operating system. Directories, symlinks, and other non-regular
// files are skipped. ctx is checked between files.
func FromDir(ctx context.Context, root string, optFns ...func(*Options)) (map[string][]byte, error) {
	opts := &Options{}
	for _, fn := range optFns {
		fn(opts)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf(`resolve directory "%s" error: %w`, root, err)
	}

	base := filepath.Base(abs)
	mkpath := func(rel string) string {
		return path.Join(base, filepath.ToSlash(rel))
	}
	if opts.JunkRoot {
		mkpath = filepath.ToSlash
	}

	var total int64
	files := make(map[string][]byte)
	err = WalkRegularFiles(ctx, root, func(name string, d fs.DirEntry) error {
		rel, err := filepath.Rel(root, name)
		if err != nil {
			return err
		}

		if opts.MaxBytes > 0 {
			fi, err := d.Info()
			if err != nil {
				return fmt.Errorf(`stat file "%s" error: %w`, name, err)
			}
			if total+fi.Size() > opts.MaxBytes {
				return fmt.Errorf(`read file "%s" error: %w (limit is %d bytes)`, name, ErrTooLarge, opts.MaxBytes)
			}
		}

		data, err := readFile(name, opts.Progress)
		if err != nil {
			return err
		}

		total += int64(len(data))
		files[mkpath(rel)] = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func readFile(name string, progress io.Writer) ([]byte, error) {
	if progress == nil {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf(`read file "%s" error: %w`, name, err)
		}
		return data, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf(`open file "%s" error: %w`, name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.TeeReader(f, progress))
	if err != nil {
		return nil, fmt.Errorf(`read file "%s" error: %w`, name, err)
	}

	return data, nil
}

// WalkRegularFiles walks root in lexical order like filepath.WalkDir but only calls fn for regular files.
//
// FromDir uses it to find files. The walk stops with ctx.Err() once ctx is done.
func WalkRegularFiles(ctx context.Context, root string, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch {
		case err != nil:
			return err
		case d.IsDir(), !d.Type().IsRegular():
			return nil
		default:
			return fn(path, d)
		}
	})
}
