package zipblob

import (
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nguyengg/zipblob/crc"
	"github.com/nguyengg/zipblob/dostime"
)

// ErrInvalidOffset is returned by Factory.BuildEntries if an entry's offset does not match its position.
var ErrInvalidOffset = errors.New("entry offset does not match layout")

// Order compares two archive names to decide which comes first; it follows the [strings.Compare] convention.
type Order func(a, b string) int

// OrderByName sorts entries by the byte-wise order of their names. This is the default.
var OrderByName Order = strings.Compare

// Options customises a Factory.
type Options struct {
	// CRC computes the checksum of each body.
	//
	// Default to crc.IEEE.
	CRC crc.Provider

	// Clock is read once per build; every entry of the archive shares that timestamp.
	//
	// Default to dostime.SystemClock (UTC). Use dostime.FixedClock for reproducible archives.
	Clock dostime.Clock

	// Order decides the layout order of entries since map iteration order is random. Names that Order reports as
	// equal are laid out in byte-wise order.
	//
	// Default to OrderByName.
	Order Order

	// NormalizeNames rewrites backslashes into forward slashes and strips leading "./" and "/" from names.
	//
	// Default to true. If two keys normalise to the same name, the build fails with a DuplicateNameError.
	NormalizeNames bool

	// Logger receives a line after each successful build.
	//
	// Default to a logger that discards everything.
	Logger *log.Logger
}

// Factory assembles store-only ZIP archives in memory.
//
// A Factory holds only its options and can be used for concurrent builds.
type Factory struct {
	opts Options
}

// New returns a new Factory with customisation options.
func New(optFns ...func(*Options)) *Factory {
	opts := Options{
		CRC:            crc.IEEE,
		Clock:          dostime.SystemClock{},
		Order:          OrderByName,
		NormalizeNames: true,
		Logger:         log.New(io.Discard, "", 0),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.CRC == nil {
		opts.CRC = crc.IEEE
	}
	if opts.Clock == nil {
		opts.Clock = dostime.SystemClock{}
	}
	if opts.Order == nil {
		opts.Order = OrderByName
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	return &Factory{opts: opts}
}

// WithCRC sets Options.CRC.
func WithCRC(p crc.Provider) func(*Options) {
	return func(opts *Options) {
		opts.CRC = p
	}
}

// WithClock sets Options.Clock.
func WithClock(c dostime.Clock) func(*Options) {
	return func(opts *Options) {
		opts.Clock = c
	}
}

// WithOrder sets Options.Order.
func WithOrder(o Order) func(*Options) {
	return func(opts *Options) {
		opts.Order = o
	}
}

// WithLogger sets Options.Logger.
func WithLogger(logger *log.Logger) func(*Options) {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// BuildArchive is a convenient method to create a new Factory then call Factory.Build.
func BuildArchive(files map[string][]byte, optFns ...func(*Options)) ([]byte, error) {
	return New(optFns...).Build(files)
}

// Build creates the archive from the given name-to-body mapping.
//
// The result is the local section (each local file header followed by its body), the central directory in the same
// order, then the end of central directory record. An empty map produces an archive that consists of only the 22-byte
// end of central directory record. On error, no partial output is returned.
func (f *Factory) Build(files map[string][]byte) ([]byte, error) {
	entries, err := f.CreateEntries(files)
	if err != nil {
		return nil, err
	}

	b, err := f.BuildEntries(entries)
	if err != nil {
		return nil, err
	}

	f.opts.Logger.Printf("built archive with %d entries (%s)", len(entries), humanize.IBytes(uint64(len(b))))
	return b, nil
}

// CreateEntries computes the CRC, timestamp, and offset of every file.
//
// Entries are returned in layout order; the offset of each entry is the sum of the sizes of all entries before it.
func (f *Factory) CreateEntries(files map[string][]byte) ([]*Entry, error) {
	dosTime, dosDate, err := dostime.Converter{Clock: f.opts.Clock}.Current()
	if err != nil {
		return nil, fmt.Errorf("read clock error: %w", err)
	}

	names, keys, err := f.names(files)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(names))
	var offset int64
	for _, name := range names {
		if offset > 0xffffffff {
			return nil, fmt.Errorf("offset of %q: %w", name, ErrSizeOverflow)
		}

		body := files[keys[name]]
		e, err := NewEntry(name, body, f.opts.CRC.Checksum(body), dosTime, dosDate, uint32(offset))
		if err != nil {
			return nil, err
		}

		entries = append(entries, e)
		offset += int64(e.Size())
	}

	return entries, nil
}

// BuildEntries composes the archive from entries that were already laid out.
//
// Every entry's offset must equal the total size of the entries before it, otherwise ErrInvalidOffset is returned.
func (f *Factory) BuildEntries(entries []*Entry) ([]byte, error) {
	eocd, l, err := newEndOfCentralDirectory(entries)
	if err != nil {
		return nil, err
	}

	b := make([]byte, 0, l.localSize+l.cdSize+EndOfCentralDirectorySize)
	for _, e := range entries {
		if int64(e.offset) != int64(len(b)) {
			return nil, fmt.Errorf("entry %q has offset %d, expected %d: %w", e.name, e.offset, len(b), ErrInvalidOffset)
		}

		b = e.AppendLocalFileHeader(b)
		b = append(b, e.body...)
	}
	for _, e := range entries {
		b = e.AppendCentralDirectoryHeader(b)
	}

	return eocd.AppendTo(b), nil
}

// names returns the archive names in layout order and the map key for each name.
func (f *Factory) names(files map[string][]byte) ([]string, map[string]string, error) {
	keys := make(map[string]string, len(files))
	names := make([]string, 0, len(files))

	for key := range files {
		name := key
		if f.opts.NormalizeNames {
			name = NormalizeName(key)
		}

		switch other, ok := keys[name]; {
		case name == "":
			return nil, nil, fmt.Errorf("key %q: %w", key, ErrEmptyName)
		case len(name) > MaxNameLength:
			return nil, nil, NameTooLongError{Name: name, Length: len(name)}
		case ok:
			// sort the pair so that the error does not depend on map iteration order.
			pair := [2]string{other, key}
			if pair[0] > pair[1] {
				pair[0], pair[1] = pair[1], pair[0]
			}
			return nil, nil, DuplicateNameError{Name: name, Keys: pair}
		}

		keys[name] = key
		names = append(names, name)
	}

	// names that Order considers equal keep their byte-wise order.
	slices.Sort(names)
	slices.SortStableFunc(names, f.opts.Order)
	return names, keys, nil
}

// NormalizeName converts backslashes to forward slashes and removes leading "./" and "/" from name.
//
// A trailing slash is kept since it marks a directory entry.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	for {
		switch {
		case strings.HasPrefix(name, "./"):
			name = name[2:]
		case strings.HasPrefix(name, "/"):
			name = name[1:]
		default:
			return name
		}
	}
}
