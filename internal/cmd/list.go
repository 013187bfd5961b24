package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipblob/scan"
)

// List prints the central directory of each archive.
type List struct {
	Args struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the ZIP archives to be listed" required:"yes"`
	} `positional-args:"yes"`

	out io.Writer
}

func (c *List) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	if c.out == nil {
		c.out = os.Stdout
	}

	for i, file := range c.Args.Files {
		if i > 0 {
			_, _ = fmt.Fprintln(c.out)
		}

		if err := c.list(string(file)); err != nil {
			return fmt.Errorf(`list "%s" error: %w`, file, err)
		}
	}

	return nil
}

func (c *List) list(name string) error {
	a, err := openArchive(name)
	if err != nil {
		return err
	}
	defer a.Close()

	eocd, headers, err := scan.CentralDirectory(a, a.Size)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "%s: %d entries, central directory at %d (%s)\n", name, eocd.CDCount, eocd.CDOffset, humanize.IBytes(uint64(eocd.CDSize)))
	_, _ = fmt.Fprintln(w, "OFFSET\tSIZE\tCRC32\tMODIFIED\tNAME")

	for fh, err := range headers {
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%08x\t%s\t%s\n",
			fh.Offset,
			humanize.IBytes(fh.UncompressedSize64),
			fh.CRC32,
			fh.Modified.Format(time.DateTime),
			fh.Name)
	}

	return w.Flush()
}
