package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/matheus3301/jobboard/internal/apperr"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps objects in an S3 bucket.
type S3Store struct {
	client  S3API
	bucket  string
	region  string
	baseURL string
}

// NewS3Store loads the default AWS credential chain for region.
func NewS3Store(ctx context.Context, bucket, region, baseURL string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, region, baseURL), nil
}

// NewS3StoreWithClient wraps an existing client. An empty baseURL yields
// virtual-hosted-style bucket URLs.
func NewS3StoreWithClient(client S3API, bucket, region, baseURL string) *S3Store {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Store{client: client, bucket: bucket, region: region, baseURL: baseURL}
}

// Put uploads r in one PutObject call. The body is buffered so the SDK can
// sign and retry it.
func (s *S3Store) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if !ValidKey(key) {
		return "", apperr.Invalid("blob key rejected", key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", apperr.Unavailable("put object "+key, err)
	}
	return PublicURL(s.baseURL, key), nil
}

// Get streams the object at key.
func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, apperr.NotFound("blob %q", key)
		}
		return nil, apperr.Unavailable("get object "+key, err)
	}
	return out.Body, nil
}
