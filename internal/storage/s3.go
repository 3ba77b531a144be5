package storage

import (
	"citricloud/backend/config"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const partSize = 6 << 20

// S3 uploads files to an S3 compatible bucket (AWS, R2, MinIO)
type S3 struct {
	C      *s3.Client
	Bucket *string

	uploader *manager.Uploader
}

func NewS3(ctx context.Context, c config.S3Config) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKeyID,
			c.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(c.Bucket)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = c.Region
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", c.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		C:      client,
		Bucket: bucket,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = partSize
		}),
	}, nil
}

// objectKey maps a directory and file name to a bucket key. Buckets have no
// directories, so dir only becomes a key prefix and nothing needs creating.
func objectKey(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}

	return dir + "/" + name
}

func (b *S3) Put(ctx context.Context, dir, name string, r io.Reader) (string, error) {
	key := objectKey(dir, name)

	// The uploader switches to a multipart upload on its own once the
	// stream is bigger than a single part
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: b.Bucket,
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return "", &StageError{Stage: StageWrite, Err: err}
	}

	return fmt.Sprintf("s3://%s/%s", *b.Bucket, key), nil
}
