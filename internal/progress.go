package internal

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// ProgressLogger implements io.WriteCloser that logs the number of bytes written at most once every interval.
//
// The log format is `<verb> X so far`, or `<verb> X / Y so far` if the expected size is known. Close logs the final
// tally.
type ProgressLogger struct {
	logger        *log.Logger
	verb          string
	rate          *rate.Sometimes
	written, size uint64
}

// NewProgressLogger creates a new ProgressLogger.
//
// size is the expected number of bytes; the zero value indicates an unknown size.
func NewProgressLogger(logger *log.Logger, verb string, interval time.Duration, size uint64) *ProgressLogger {
	return &ProgressLogger{
		logger: logger,
		verb:   verb,
		rate:   &rate.Sometimes{Interval: interval},
		size:   size,
	}
}

func (l *ProgressLogger) Write(p []byte) (n int, err error) {
	n = len(p)
	l.written += uint64(n)

	l.rate.Do(func() {
		if l.size == 0 {
			l.logger.Printf("%s %s so far", l.verb, humanize.IBytes(l.written))
		} else {
			l.logger.Printf("%s %s / %s so far", l.verb, humanize.IBytes(l.written), humanize.IBytes(l.size))
		}
	})

	return n, nil
}

func (l *ProgressLogger) Close() error {
	if l.size == 0 || l.written == l.size {
		l.logger.Printf("%s %s in total", l.verb, humanize.IBytes(l.written))
	} else {
		l.logger.Printf("%s %s / %s in total", l.verb, humanize.IBytes(l.written), humanize.IBytes(l.size))
	}

	return nil
}

// DefaultBytes is equivalent to progressbar.DefaultBytes but with higher progressbar.OptionThrottle.
//
// maxBytes may be -1 to display a spinner instead.
func DefaultBytes(maxBytes int64, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}

// NewProgress returns either a progress bar or a ProgressLogger.
func NewProgress(bar bool, logger *log.Logger, verb string, size int64) io.WriteCloser {
	if bar {
		if size <= 0 {
			size = -1
		}
		return DefaultBytes(size, verb)
	}

	if size < 0 {
		size = 0
	}
	return NewProgressLogger(logger, verb, 5*time.Second, uint64(size))
}
