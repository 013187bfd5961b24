package upload

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// loggingClient logs the successful parts that manager.Uploader uploads.
//
// UploadPart may be called from any of the goroutines that manager.Uploader starts so the tally is atomic.
type loggingClient struct {
	manager.UploadAPIClient
	logger *log.Logger
	parts  atomic.Int32
}

var _ manager.UploadAPIClient = &loggingClient{}

func (c *loggingClient) PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	output, err := c.UploadAPIClient.PutObject(ctx, input, optFns...)
	if err == nil {
		c.logger.Printf("uploaded in a single part")
	}

	return output, err
}

func (c *loggingClient) UploadPart(ctx context.Context, input *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	output, err := c.UploadAPIClient.UploadPart(ctx, input, optFns...)
	if err == nil {
		c.logger.Printf("uploaded %d parts so far", c.parts.Add(1))
	}

	return output, err
}

func (c *loggingClient) AbortMultipartUpload(ctx context.Context, input *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	output, err := c.UploadAPIClient.AbortMultipartUpload(ctx, input, optFns...)
	if err != nil {
		c.logger.Printf("abort multipart upload (upload Id %s) error: %v", *input.UploadId, err)
	} else {
		c.logger.Printf("aborted multipart upload (upload Id %s)", *input.UploadId)
	}

	return output, err
}
