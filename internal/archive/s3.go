package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"karmafeed/internal/config"
)

// S3Uploader writes objects to an S3-compatible bucket (AWS, R2, MinIO).
type S3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader builds a client from the ARCHIVE_* settings. Static keys are used when
// given; otherwise the default AWS credential chain applies.
func NewS3Uploader(ctx context.Context, cfg *config.Config) (*S3Uploader, error) {
	if !cfg.ArchiveEnabled() {
		return nil, fmt.Errorf("missing ARCHIVE_BUCKET")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.ArchiveRegion)}
	if cfg.ArchiveAccessKeyID != "" && cfg.ArchiveSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.ArchiveAccessKeyID, cfg.ArchiveSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for archive: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.ArchiveEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.ArchiveEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, bucket: cfg.ArchiveBucket}, nil
}

func (u *S3Uploader) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to %s: %w", u.bucket, err)
	}
	return nil
}
