package main

import (
	"errors"

	"github.com/jessevdk/go-flags"
)

// exitCode returns 0 on success or if help was requested, 2 for usage errors, and 1 for everything else.
func exitCode(err error) int {
	var fErr *flags.Error

	switch {
	case err == nil, flags.WroteHelp(err):
		return 0
	case errors.As(err, &fErr) && fErr.Type != flags.ErrUnknown:
		return 2
	default:
		return 1
	}
}
