package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OpenExclFile creates a new file for writing with the condition that the file did not exist prior to this call.
//
// If basename+ext already exists, basename-1+ext, basename-2+ext, etc. are tried in that order. See [os.O_EXCL].
// Caller is responsible for closing the file upon a successful return.
func OpenExclFile(basename, ext string) (file *os.File, err error) {
	name := basename + ext
	for i := 0; ; {
		switch file, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666); {
		case err == nil:
			return
		case errors.Is(err, os.ErrExist):
			i++
			name = basename + "-" + strconv.Itoa(i) + ext
		default:
			return nil, fmt.Errorf("create file error: %w", err)
		}
	}
}

// ParseS3URI parses S3 URIs in format s3://bucket/key.
//
// The key is optional, and the bucket must not be empty.
func ParseS3URI(text string) (bucket, key string, err error) {
	if !strings.HasPrefix(text, "s3://") {
		return "", "", fmt.Errorf("text does not start with s3://")
	}

	bucket, key, _ = strings.Cut(strings.TrimPrefix(text, "s3://"), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("text does not have a bucket")
	}

	return
}
