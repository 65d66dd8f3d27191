// Package s3 uploads run artifacts to an S3 bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/couchcryptid/accident-analysis/internal/adapter/chart"
	"github.com/couchcryptid/accident-analysis/internal/observability"
)

// ObjectPutter is the subset of the S3 client used by Uploader.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes artifacts under s3://bucket/prefix/<run-id>/.
type Uploader struct {
	client  ObjectPutter
	bucket  string
	prefix  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewUploader builds an Uploader backed by the default AWS credential chain.
// An empty region defers to the SDK's own resolution.
func NewUploader(ctx context.Context, bucket, prefix, region string, logger *slog.Logger, metrics *observability.Metrics) (*Uploader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewUploaderWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger, metrics), nil
}

// NewUploaderWithClient builds an Uploader around an existing client.
func NewUploaderWithClient(client ObjectPutter, bucket, prefix string, logger *slog.Logger, metrics *observability.Metrics) *Uploader {
	return &Uploader{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		logger:  logger,
		metrics: metrics,
	}
}

// Key returns the object key for an artifact of the given run.
func (u *Uploader) Key(runID, name string) string {
	return path.Join(u.prefix, runID, name)
}

// UploadArtifacts uploads every artifact. It keeps going after a failure
// and returns all failures joined.
func (u *Uploader) UploadArtifacts(ctx context.Context, runID string, artifacts []chart.Artifact) error {
	var errs []error
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		key := u.Key(runID, a.Name)
		if err := u.upload(ctx, key, a); err != nil {
			u.logger.Error("artifact upload failed", "key", key, "error", err)
			u.metrics.ArtifactUploads.WithLabelValues("error").Inc()
			errs = append(errs, fmt.Errorf("upload %s: %w", a.Name, err))
			continue
		}
		u.logger.Info("artifact uploaded", "bucket", u.bucket, "key", key)
		u.metrics.ArtifactUploads.WithLabelValues("success").Inc()
	}
	return errors.Join(errs...)
}

func (u *Uploader) upload(ctx context.Context, key string, a chart.Artifact) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if a.ContentType != "" {
		in.ContentType = aws.String(a.ContentType)
	}
	_, err = u.client.PutObject(ctx, in)
	return err
}
