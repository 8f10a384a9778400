// Package clients holds thin wrappers around AWS SDK service clients used
// by the optional S3-backed data store.
package clients

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ErrNotFound is returned by GetObject when the key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the subset of S3 operations a document store needs: whole
// object get/put keyed by name.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
	DeleteObject(ctx context.Context, key string) error
}

// S3Client wraps the AWS S3 client, scoped to one bucket.
type S3Client struct {
	svc    *s3.Client
	bucket string
}

// NewS3Client builds an S3Client for bucket, optionally pointed at a local
// endpoint (e.g. LocalStack) when isLocal is set.
func NewS3Client(ctx context.Context, bucket string, isLocal bool, endpoint string) (*S3Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	var svc *s3.Client
	if isLocal && endpoint != "" {
		svc = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	} else {
		svc = s3.NewFromConfig(cfg)
	}

	return &S3Client{svc: svc, bucket: bucket}, nil
}

func (c *S3Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	out, err := c.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *smithyhttp.ResponseError
		if errors.As(err, &notFound) && notFound.HTTPStatusCode() == 404 {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (c *S3Client) PutObject(ctx context.Context, key string, data []byte) error {
	_, err := c.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	return err
}

func (c *S3Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.svc.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}
