package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"

	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSBucket stores objects in a Google Cloud Storage bucket.
type GCSBucket struct {
	client *storage.Client
	bucket string
}

// NewGCSBucket creates a GCSBucket for the given bucket. opts are passed
// through to the underlying GCS client, allowing credential injection.
func NewGCSBucket(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSBucket, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create GCS client: %w", err)
	}
	return &GCSBucket{client: client, bucket: bucket}, nil
}

// gcsClientOptions resolves application default credentials up front, so
// that a missing or unreadable key fails as ErrUnauthenticated before any
// request is made. A custom endpoint without credentials is assumed to be an
// emulator and is accessed anonymously.
func gcsClientOptions(bucket string, opts Options) ([]option.ClientOption, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var out []option.ClientOption
	if opts.Endpoint != "" {
		out = append(out, option.WithEndpoint(opts.Endpoint))
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes:          []string{storage.ScopeFullControl},
		CredentialsFile: getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	})
	switch {
	case err == nil:
		out = append(out, option.WithAuthCredentials(creds))
	case opts.Endpoint != "":
		out = append(out, option.WithoutAuthentication())
	default:
		return nil, &Error{Op: "open", Bucket: bucket, Err: fmt.Errorf("%w: %w", ErrUnauthenticated, err)}
	}
	return out, nil
}

func (b *GCSBucket) Name() string {
	return b.bucket
}

func (b *GCSBucket) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", b.wrap("list", "", err))
				return
			}
			if !yield(attrs.Name, nil) {
				return
			}
		}
	}
}

// Upload writes content to GCS at ObjectName.
func (b *GCSBucket) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	obj := b.client.Bucket(b.bucket).Object(req.ObjectName)
	w := obj.NewWriter(ctx)
	w.ContentType = req.ContentType
	w.Metadata = req.Metadata

	if _, err := io.Copy(w, req.Content); err != nil {
		_ = w.Close()
		return nil, b.wrap("upload", req.ObjectName, err)
	}
	if err := w.Close(); err != nil {
		return nil, b.wrap("upload", req.ObjectName, err)
	}

	return &UploadResult{
		ObjectName: req.ObjectName,
		URL:        fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, req.ObjectName),
	}, nil
}

// MakePublic grants allUsers the reader role on the object.
func (b *GCSBucket) MakePublic(ctx context.Context, objectName string) error {
	acl := b.client.Bucket(b.bucket).Object(objectName).ACL()
	if err := acl.Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return b.wrap("make-public", objectName, err)
	}
	return nil
}

func (b *GCSBucket) wrap(op, key string, err error) error {
	var gerr *googleapi.Error
	switch {
	case errors.Is(err, storage.ErrBucketNotExist):
		err = fmt.Errorf("%w: %w", ErrBucketNotFound, err)
	case errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized:
		err = fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return &Error{Op: op, Bucket: b.bucket, Key: key, Err: err}
}
