// Package s3 publishes the finished archive to an S3-compatible bucket.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/couchcryptid/navdata-etl/internal/config"
)

const archiveContentType = "application/zip"

// putObjectAPI is the subset of *s3.Client the uploader calls.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader puts archive files into a bucket under an optional prefix.
type Uploader struct {
	client putObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// NewUploader builds an S3 client from the configuration. Static
// credentials are used when both keys are set; otherwise the default AWS
// credential chain applies. A custom endpoint switches to path-style
// addressing for MinIO and similar stores.
func NewUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(cfg.S3Endpoint))
			o.UsePathStyle = true
		}
	})
	return newUploader(client, cfg.S3Bucket, cfg.S3Prefix, logger), nil
}

func newUploader(client putObjectAPI, bucket, prefix string, logger *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// Upload stores the file at localPath under prefix/<base name> and returns
// the object key.
func (u *Uploader) Upload(ctx context.Context, localPath string, metadata map[string]string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat archive: %w", err)
	}

	key := u.objectKey(filepath.Base(localPath))
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(archiveContentType),
		Metadata:      metadata,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3://%s/%s: %w", localPath, u.bucket, key, err)
	}

	u.logger.Info("archive uploaded", "bucket", u.bucket, "key", key, "bytes", info.Size())
	return key, nil
}

func (u *Uploader) objectKey(name string) string {
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

func endpointURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return "https://" + endpoint
}
