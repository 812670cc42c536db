package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"jasypt-go/internal/config"
	"jasypt-go/internal/jasypt"
)

// maxKeySize caps downloads; private keys are a few kilobytes.
const maxKeySize = 1 << 20

// S3Loader loads "s3://bucket/key" locations.
type S3Loader struct {
	downloader *manager.Downloader
}

var _ jasypt.ResourceLoader = (*S3Loader)(nil)

// NewS3Loader wraps an existing S3 client.
func NewS3Loader(client manager.DownloadAPIClient) *S3Loader {
	return &S3Loader{
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
	}
}

// NewS3LoaderFromConfig builds an S3 client from cfg. Static credentials are
// used when both keys are set, otherwise the default AWS credential chain.
func NewS3LoaderFromConfig(ctx context.Context, cfg config.S3Config) (*S3Loader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3Loader(client), nil
}

// Load downloads the object named by an "s3://bucket/key" location.
func (l *S3Loader) Load(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := parseS3Location(location)
	if err != nil {
		return nil, err
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, 4096))
	n, err := l.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var noSuchBucket *types.NoSuchBucket
		if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, fmt.Errorf("downloading %s: %w", location, err)
	}
	if n > maxKeySize {
		return nil, fmt.Errorf("resource %s is %d bytes, larger than the %d byte limit", location, n, maxKeySize)
	}
	return buf.Bytes()[:n], nil
}

func parseS3Location(location string) (bucket, key string, err error) {
	scheme, rest := splitScheme(location)
	if scheme != schemeS3 {
		return "", "", fmt.Errorf("not an s3 location: %q", location)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 location must look like s3://bucket/key, got %q", location)
	}
	return bucket, key, nil
}
