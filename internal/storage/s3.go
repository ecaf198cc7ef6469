package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soundbay/soundbay/pkg/errors"
	"github.com/soundbay/soundbay/pkg/logger"
)

// S3Config configures the S3-backed uploader.
type S3Config struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// S3Uploader writes assets to an S3 bucket and serves them by public URL.
type S3Uploader struct {
	client *s3.Client
	cfg    S3Config
	log    *zap.Logger
}

// NewS3Uploader builds an uploader from the ambient AWS credential chain
// and verifies the bucket is reachable.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("s3 bucket %q not reachable: %w", cfg.Bucket, err)
	}

	return &S3Uploader{
		client: client,
		cfg:    cfg,
		log:    logger.WithModule("storage.s3"),
	}, nil
}

// Upload stores the body under a collision-free key and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, kind Kind, filename, contentType string, body io.Reader) (string, error) {
	key := objectKey(kind, filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		u.log.Error("failed to upload object",
			zap.String("bucket", u.cfg.Bucket),
			zap.String("key", key),
			zap.Error(err))
		return "", errors.Wrap(err, "failed to store uploaded file")
	}

	u.log.Debug("uploaded object", zap.String("key", key))
	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

// objectKey prefixes the asset kind and a random ID so concurrent uploads
// of identically named files never overwrite each other.
func objectKey(kind Kind, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" || base == "." {
		base = "file"
	}
	return fmt.Sprintf("%s/%s-%s", kind, uuid.New().String(), base)
}
