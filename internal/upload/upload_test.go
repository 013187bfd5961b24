package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records the single PutObject call that small uploads use.
type fakeClient struct {
	manager.UploadAPIClient
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (c *fakeClient) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if c.err != nil {
		return nil, c.err
	}

	c.input = input
	body, err := io.ReadAll(input.Body)
	c.body = body
	return &s3.PutObjectOutput{}, err
}

func TestUploader_Upload(t *testing.T) {
	client := &fakeClient{}
	var buf bytes.Buffer

	u := &Uploader{
		Client:       client,
		Bucket:       "my-bucket",
		Prefix:       "archives/",
		StorageClass: types.StorageClassStandardIa,
		Logger:       log.New(&buf, "", 0),
	}

	uri, err := u.Upload(context.Background(), "path/to/my-dir.zip", bytes.NewReader([]byte("PK")), "application/zip")
	require.NoError(t, err)
	assert.Equal(t, "s3://my-bucket/archives/my-dir.zip", uri)

	require.NotNil(t, client.input)
	assert.Equal(t, "my-bucket", aws.ToString(client.input.Bucket))
	assert.Equal(t, "archives/my-dir.zip", aws.ToString(client.input.Key))
	assert.Equal(t, "application/zip", aws.ToString(client.input.ContentType))
	assert.Equal(t, types.StorageClassStandardIa, client.input.StorageClass)
	assert.Equal(t, []byte("PK"), client.body)
	assert.Equal(t, "uploaded in a single part\n", buf.String())
}

func TestUploader_Upload_Error(t *testing.T) {
	u := &Uploader{
		Client: &fakeClient{err: errors.New("access denied")},
		Bucket: "my-bucket",
	}

	_, err := u.Upload(context.Background(), "my-dir.zip", bytes.NewReader([]byte("PK")), "")
	assert.ErrorContains(t, err, `upload to "s3://my-bucket/my-dir.zip" error`)
	assert.ErrorContains(t, err, "access denied")
}
