// Package cmd contains the subcommands of the zipblob CLI.
package cmd

import (
	"github.com/jessevdk/go-flags"
)

// Zipblob is the root of the command tree.
type Zipblob struct {
	Create Create `command:"create" alias:"c" description:"create store-only ZIP archives from directories"`
	List   List   `command:"list" alias:"ls" description:"list the central directory of ZIP archives"`
	Verify Verify `command:"verify" description:"read back every entry of ZIP archives"`
}

// NewParser returns the parser for the zipblob CLI.
func NewParser() *flags.Parser {
	p := flags.NewParser(&Zipblob{}, flags.Default)
	p.Name = "zipblob"
	return p
}
