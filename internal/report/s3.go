package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vismaya/demandops/internal/apitrack"
)

// s3PutObjectAPI is the slice of the S3 client the publisher needs.
type s3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads rendered reports to an S3 bucket.
type S3Publisher struct {
	client  s3PutObjectAPI
	bucket  string
	prefix  string
	tracker *apitrack.Tracker
	logger  *slog.Logger
}

// NewS3Publisher creates a publisher for the given bucket and key prefix.
func NewS3Publisher(client *s3.Client, bucket, prefix string, tracker *apitrack.Tracker, logger *slog.Logger) *S3Publisher {
	return &S3Publisher{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		tracker: tracker,
		logger:  logger,
	}
}

// Publish renders the report and uploads it, returning the object key.
func (p *S3Publisher) Publish(ctx context.Context, r *CostReport, format Format) (string, error) {
	body, err := r.Render(format)
	if err != nil {
		return "", err
	}

	key := path.Join(p.prefix, r.GeneratedAt.Format("2006/01"), r.Filename(format))
	contentType := "text/csv"
	if format == FormatJSON {
		contentType = "application/json"
	}

	p.tracker.TrackS3Call("PutObject")
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading report to s3://%s/%s: %w", p.bucket, key, err)
	}

	p.logger.Info("report published", "bucket", p.bucket, "key", key, "bytes", len(body))
	return key, nil
}
