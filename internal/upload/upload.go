// Package upload pushes finished archives to S3 using the S3 transfer manager.
package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Uploader uploads files to a fixed bucket and prefix.
type Uploader struct {
	// Client is the S3 client to use. Required.
	Client manager.UploadAPIClient
	// Bucket is the destination bucket. Required.
	Bucket string
	// Prefix is prepended to every key.
	Prefix string

	ExpectedBucketOwner *string
	StorageClass        types.StorageClass

	// Logger receives per-part progress. The default discards.
	Logger *log.Logger
}

// Upload uploads the body under Prefix + name.
//
// The S3 URI of the new object is returned.
func (u *Uploader) Upload(ctx context.Context, name string, body io.Reader, contentType string) (string, error) {
	key := u.Prefix + filepath.Base(name)

	logger := u.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	uploader := manager.NewUploader(&loggingClient{UploadAPIClient: u.Client, logger: logger})

	input := &s3.PutObjectInput{
		Bucket:              aws.String(u.Bucket),
		Key:                 aws.String(key),
		Body:                body,
		ExpectedBucketOwner: u.ExpectedBucketOwner,
		StorageClass:        u.StorageClass,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf(`upload to "s3://%s/%s" error: %w`, u.Bucket, key, err)
	}

	return fmt.Sprintf("s3://%s/%s", u.Bucket, key), nil
}
