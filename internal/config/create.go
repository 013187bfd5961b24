package config

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// CreateConfig contains settings for creating archives.
type CreateConfig struct {
	// CRC is the name of the checksum algorithm, see crc.FromName.
	CRC string
	// Time is a fixed modification time for all entries. The zero value indicates the system clock.
	Time time.Time
	// JunkRoot drops the directory's own name from entry names.
	JunkRoot bool
	// MaxBytes bounds the total size of files read into memory. The zero value indicates no limit.
	MaxBytes int64
	// Codec is the name of the output codec, see codec.FromName.
	Codec string
}

// ForCreate returns configuration for creating archives.
//
// An error is returned if any setting is present but malformed.
func (l *Loader) ForCreate() (c CreateConfig, err error) {
	sec := l.section("create")
	if sec == nil {
		return c, nil
	}

	c.CRC = sec.Key("crc").String()
	c.Codec = sec.Key("codec").String()

	if v := sec.Key("time").String(); v != "" {
		if c.Time, err = time.Parse(time.RFC3339, v); err != nil {
			return c, fmt.Errorf("invalid [create] time: %w", err)
		}
	}

	if sec.HasKey("junk-root") {
		if c.JunkRoot, err = sec.Key("junk-root").Bool(); err != nil {
			return c, fmt.Errorf("invalid [create] junk-root: %w", err)
		}
	}

	if v := sec.Key("max-bytes").String(); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return c, fmt.Errorf("invalid [create] max-bytes: %w", err)
		}
		c.MaxBytes = int64(n)
	}

	return c, nil
}

// ForCreate calls Loader.ForCreate on the DefaultLoader instance.
func ForCreate() (CreateConfig, error) {
	return DefaultLoader.ForCreate()
}
