package storage

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const defaultS3Region = "us-east-1"

// s3API is the subset of the S3 client used by S3Bucket.
type s3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
}

// S3Bucket stores objects in an Amazon S3 (or S3-compatible) bucket.
type S3Bucket struct {
	client  s3API
	name    string
	baseURL string
}

// NewS3Bucket creates an S3Bucket for the named bucket. Credentials are taken
// from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY (and AWS_SESSION_TOKEN when
// present); if either of the first two is unset the returned error wraps
// ErrUnauthenticated and no request is made.
func NewS3Bucket(ctx context.Context, name string, opts Options) (*S3Bucket, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	accessKey := getenv("AWS_ACCESS_KEY_ID")
	secretKey := getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return nil, &Error{
			Op:     "open",
			Bucket: name,
			Err:    fmt.Errorf("%w: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set", ErrUnauthenticated),
		}
	}

	region := firstNonEmpty(opts.Region, getenv("AWS_REGION"), getenv("AWS_DEFAULT_REGION"), defaultS3Region)

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, getenv("AWS_SESSION_TOKEN"))),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			// S3-compatible stores are addressed path-style.
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", name, region)
	if opts.Endpoint != "" {
		baseURL = strings.TrimSuffix(opts.Endpoint, "/") + "/" + name
	}

	return newS3Bucket(client, name, baseURL), nil
}

func newS3Bucket(client s3API, name, baseURL string) *S3Bucket {
	return &S3Bucket{client: client, name: name, baseURL: baseURL}
}

func (b *S3Bucket) Name() string {
	return b.name
}

// List pages through ListObjectsV2 lazily, so callers that stop early do not
// fetch the remaining pages.
func (b *S3Bucket) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(b.name),
			Prefix: aws.String(prefix),
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield("", b.wrap("list", "", err))
				return
			}
			for _, obj := range page.Contents {
				if obj.Key == nil {
					continue
				}
				if !yield(*obj.Key, nil) {
					return
				}
			}
		}
	}
}

// Upload writes content to S3 at ObjectName with a single PutObject call.
func (b *S3Bucket) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(b.name),
		Key:      aws.String(req.ObjectName),
		Body:     req.Content,
		Metadata: req.Metadata,
	}
	if req.Size > 0 {
		input.ContentLength = aws.Int64(req.Size)
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return nil, b.wrap("upload", req.ObjectName, err)
	}

	return &UploadResult{
		ObjectName: req.ObjectName,
		URL:        b.baseURL + "/" + req.ObjectName,
	}, nil
}

// MakePublic applies the public-read canned ACL to the object.
func (b *S3Bucket) MakePublic(ctx context.Context, objectName string) error {
	_, err := b.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(objectName),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return b.wrap("make-public", objectName, err)
	}
	return nil
}

func (b *S3Bucket) wrap(op, key string, err error) error {
	switch {
	case isS3AuthError(err):
		err = fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	case isS3NoSuchBucket(err):
		err = fmt.Errorf("%w: %w", ErrBucketNotFound, err)
	}
	return &Error{Op: op, Bucket: b.name, Key: key, Err: err}
}

// isS3AuthError checks if the error indicates missing, invalid or expired
// credentials.
func isS3AuthError(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken", "TokenRefreshRequired":
		return true
	}
	return false
}

// isS3NoSuchBucket checks if the error indicates the bucket does not exist.
func isS3NoSuchBucket(err error) bool {
	// Check for typed S3 errors first
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	// Fall back to API error code checking for S3-compatible services
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchBucket"
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
