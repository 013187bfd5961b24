package zipblob

import (
	"errors"
	"fmt"
)

var (
	// ErrNameTooLong is returned if a file name does not fit in the 16-bit name length field.
	ErrNameTooLong = errors.New("file name too long")

	// ErrEmptyName is returned if a file name is empty after normalisation.
	ErrEmptyName = errors.New("file name is empty")

	// ErrDuplicateName is returned if two files end up with the same name in the archive.
	ErrDuplicateName = errors.New("duplicate file name")

	// ErrSizeOverflow is returned if a body, offset, central directory size, or entry count does not fit in its
	// field. ZIP64 is not supported.
	ErrSizeOverflow = errors.New("size overflow")
)

// NameTooLongError is returned if Name is longer than MaxNameLength bytes.
type NameTooLongError struct {
	Name   string
	Length int
}

func (e NameTooLongError) Unwrap() error {
	return ErrNameTooLong
}

func (e NameTooLongError) Error() string {
	return fmt.Sprintf("file name too long: %d bytes exceeds limit of %d bytes, name starts with %q", e.Length, MaxNameLength, truncate(e.Name, 32))
}

// DuplicateNameError is returned if keys in the input map normalise to the same archive name.
type DuplicateNameError struct {
	// Name is the normalised name both keys map to.
	Name string
	// Keys are the two colliding map keys in sorted order.
	Keys [2]string
}

func (e DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate file name %q (from %q and %q)", e.Name, e.Keys[0], e.Keys[1])
}

func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}

	return text[:n] + "..."
}
