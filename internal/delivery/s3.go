package delivery

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Uploader delivers files to an S3 bucket. Object keys are the
// tree-relative paths, slash-separated, under an optional key prefix.
type S3Uploader struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// S3Options configure an S3Uploader. AccessKeyID/SecretAccessKey are
// optional; when empty, the default AWS credential chain is used.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Uploader creates an uploader for the given bucket.
func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 delivery requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Uploader{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
	}, nil
}

// Put uploads the content as an object keyed by relPath.
func (u *S3Uploader) Put(ctx context.Context, relPath string, r io.Reader, size int64) error {
	key := path.Join(u.prefix, filepath.ToSlash(relPath))

	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("uploading to s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}

// Validate checks the bucket is reachable with the current credentials.
func (u *S3Uploader) Validate(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", u.bucket, err)
	}
	return nil
}

// Compile-time check that S3Uploader implements the Uploader interface
var _ Uploader = (*S3Uploader)(nil)
