package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/jessevdk/go-flags"
	"github.com/mholt/archives"
	"github.com/nguyengg/zipblob/internal"
	"github.com/nguyengg/zipblob/scan"
	"golang.org/x/sync/errgroup"
)

// ErrMismatch is returned by Verify if an independent reader disagrees with the central directory.
var ErrMismatch = errors.New("archive contents do not match central directory")

// Verify reads back every entry of each archive with an independent ZIP reader.
type Verify struct {
	MaxConcurrency int `short:"P" long:"max-concurrency" description:"the number of archives to verify at the same time" default:"1"`
	Args           struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the ZIP archives to be verified" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Verify) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	limit := c.MaxConcurrency
	if limit < 1 {
		limit = 1
	}

	var success atomic.Int32
	n := len(c.Args.Files)

	g := errgroup.Group{}
	g.SetLimit(limit)
	for i, file := range c.Args.Files {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			ctx := internal.WithPrefixLogger(ctx, internal.Prefix(i+1, n, file))
			logger := internal.MustLogger(ctx)

			count, err := verify(ctx, string(file))
			switch {
			case err == nil:
				logger.Printf("verified %d entries", count)
				success.Add(1)
			case errors.Is(err, context.Canceled):
				logger.Printf("interrupted")
			default:
				logger.Printf("verify error: %v", err)
			}

			return nil
		})
	}
	_ = g.Wait()

	if m := int(success.Load()); m != n {
		return fmt.Errorf("failed to verify %d/%d archives", n-m, n)
	}

	return nil
}

// verify returns the number of entries that were read back successfully.
//
// The central directory is checked three ways: against the local file headers when they carry sizes, against an
// independent ZIP reader, and by reading every entry in full so that the reader checks its CRC-32.
func verify(ctx context.Context, name string) (int, error) {
	a, err := openArchive(name)
	if err != nil {
		return 0, err
	}
	defer a.Close()

	format, _, err := archives.Identify(ctx, a.Name, a)
	if err != nil {
		return 0, fmt.Errorf("identify archive error: %w", err)
	}
	if _, ok := format.(archives.Zip); !ok {
		return 0, fmt.Errorf("not a ZIP archive: %s", format.Extension())
	}

	_, headers, err := scan.CentralDirectory(a, a.Size)
	if err != nil {
		return 0, err
	}

	var cd []*scan.FileHeader
	for fh, err := range headers {
		if err != nil {
			return 0, err
		}

		cd = append(cd, fh)
	}

	if err = verifyLocalHeaders(internal.Logger(ctx), io.NewSectionReader(a, 0, a.Size), cd); err != nil {
		return 0, err
	}

	if _, err = a.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	var actual []string
	if err = (archives.Zip{}).Extract(ctx, a, func(ctx context.Context, info archives.FileInfo) error {
		actual = append(actual, strings.TrimSuffix(info.NameInArchive, "/"))
		if info.IsDir() {
			return nil
		}

		rc, err := info.Open()
		if err != nil {
			return fmt.Errorf(`open "%s" error: %w`, info.NameInArchive, err)
		}
		defer rc.Close()

		if _, err = io.Copy(io.Discard, rc); err != nil {
			return fmt.Errorf(`read "%s" error: %w`, info.NameInArchive, err)
		}

		return nil
	}); err != nil {
		return 0, err
	}

	expected := make([]string, len(cd))
	for i, fh := range cd {
		expected[i] = strings.TrimSuffix(fh.Name, "/")
	}

	if !slices.Equal(expected, actual) {
		return 0, fmt.Errorf("%w: expected %q, got %q", ErrMismatch, expected, actual)
	}

	return len(actual), nil
}

// verifyLocalHeaders walks the local file headers in src and compares them to the central directory.
//
// Archives whose local headers defer their sizes to data descriptors cannot be walked and are skipped.
func verifyLocalHeaders(logger *log.Logger, src io.Reader, cd []*scan.FileHeader) error {
	i := 0
	for fh, err := range scan.Forward(src) {
		switch {
		case errors.Is(err, scan.ErrDataDescriptor):
			logger.Printf("skipped local file header check: %v", err)
			return nil
		case err != nil:
			return err
		case i >= len(cd):
			return fmt.Errorf("%w: local file header %q at 0x%x is not in central directory", ErrMismatch, fh.Name, fh.Offset)
		case fh.Name != cd[i].Name, fh.Offset != cd[i].Offset, fh.CRC32 != cd[i].CRC32, fh.CompressedSize64 != cd[i].CompressedSize64:
			return fmt.Errorf("%w: local file header %q at 0x%x does not match central directory entry %q at 0x%x", ErrMismatch, fh.Name, fh.Offset, cd[i].Name, cd[i].Offset)
		}

		i++
	}

	if i != len(cd) {
		return fmt.Errorf("%w: found %d local file headers, expected %d", ErrMismatch, i, len(cd))
	}

	return nil
}
