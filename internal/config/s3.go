package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// UploadConfig contains upload configurations.
type UploadConfig struct {
	Bucket              string
	Prefix              string
	AWSProfile          string
	ExpectedBucketOwner *string
	StorageClass        types.StorageClass
}

// ForUpload returns configuration for upload.
func (l *Loader) ForUpload() (c UploadConfig) {
	sec := l.section("upload")
	if sec == nil {
		return c
	}

	c.Bucket = sec.Key("bucket").String()
	c.Prefix = sec.Key("prefix").String()
	c.AWSProfile = sec.Key("aws-profile").String()

	if sec.HasKey("expected-bucket-owner") {
		c.ExpectedBucketOwner = aws.String(sec.Key("expected-bucket-owner").String())
	}
	if sec.HasKey("storage-class") {
		c.StorageClass = types.StorageClass(sec.Key("storage-class").String())
	}

	return
}

// ForUpload calls Loader.ForUpload on the DefaultLoader instance.
func ForUpload() (c UploadConfig) {
	return DefaultLoader.ForUpload()
}

// NewS3Client creates a new S3 client using Loader.Profile if given, or the [upload] aws-profile setting otherwise.
//
// The client is cached for subsequent calls.
func (l *Loader) NewS3Client(ctx context.Context, optFns ...func(*s3.Options)) (*s3.Client, error) {
	if c, ok := l.s3clientCache.Load("s3"); ok {
		return c.(*s3.Client), nil
	}

	profile := l.Profile
	if profile == "" {
		profile = l.ForUpload().AWSProfile
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(cfg, optFns...)
	l.s3clientCache.Store("s3", c)
	return c, nil
}

// NewS3Client calls Loader.NewS3Client on the DefaultLoader instance.
func NewS3Client(ctx context.Context, optFns ...func(*s3.Options)) (*s3.Client, error) {
	return DefaultLoader.NewS3Client(ctx, optFns...)
}
