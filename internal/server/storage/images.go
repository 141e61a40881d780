// Package storage turns stored image references into URLs clients can load.
package storage

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gogamastore/storefront/internal/logging"
	sc "github.com/gogamastore/storefront/internal/server/config"
)

// PresignExpiry is how long a presigned image URL stays valid.
const PresignExpiry = 15 * time.Minute

// ImageResolver maps an image reference to something a client can fetch.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) string
}

// Passthrough returns references unchanged. It is used when no bucket is
// configured.
type Passthrough struct{}

func (Passthrough) Resolve(_ context.Context, ref string) string { return ref }

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Resolver presigns GET requests for object keys in one bucket. Absolute
// URLs and data: URIs are not object keys and pass through.
type S3Resolver struct {
	client  *s3.PresignClient
	bucket  string
	expires time.Duration
	logger  logging.Logger
}

// NewImageResolver builds an S3Resolver from cfg, or a Passthrough when
// cfg.S3Bucket is empty.
func NewImageResolver(ctx context.Context, cfg *sc.Config, logger logging.Logger) (ImageResolver, error) {
	if cfg.S3Bucket == "" {
		return Passthrough{}, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.S3Region)}
	if cfg.S3RootUser != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3RootUser, cfg.S3RootPassword, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Resolver(s3.NewPresignClient(client), cfg.S3Bucket, logger), nil
}

func NewS3Resolver(client *s3.PresignClient, bucket string, logger logging.Logger) *S3Resolver {
	return &S3Resolver{
		client:  client,
		bucket:  bucket,
		expires: PresignExpiry,
		logger:  logger.With("module", "images"),
	}
}

func (r *S3Resolver) Resolve(ctx context.Context, ref string) string {
	if !IsObjectKey(ref) {
		return ref
	}

	req, err := r.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(strings.TrimPrefix(ref, "/")),
	}, s3.WithPresignExpires(r.expires))
	if err != nil {
		r.logger.Warn(ctx, "presign failed, returning raw reference", "key", ref, "error", err)
		return ref
	}
	return req.URL
}

// IsObjectKey reports whether ref names an object in the bucket rather than
// an absolute URL or inline data.
func IsObjectKey(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == ""
}
