// Package storage provides an abstraction over the object stores that
// published artefacts live in. S3 is the production backend; GCS and a local
// directory satisfy the same interface, the latter mostly for dry runs and
// tests.
package storage

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/url"
	"strings"
)

// Bucket lists and writes objects in a single storage bucket.
type Bucket interface {
	// Name returns the bucket name as the backend knows it.
	Name() string

	// List yields every object name beginning with prefix, in whatever order
	// the backend returns them. Iteration stops at the first error.
	List(ctx context.Context, prefix string) iter.Seq2[string, error]

	// Upload writes the request content to an object, replacing any existing
	// object of the same name.
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)

	// MakePublic grants anonymous read access to a single object.
	MakePublic(ctx context.Context, objectName string) error
}

type UploadRequest struct {
	// ObjectName is the object path within the bucket.
	ObjectName string

	// Content is the data to be uploaded.
	Content io.Reader

	// Size is the length of Content in bytes. Backends that need a content
	// length up front use it instead of buffering.
	Size int64

	// ContentType is the MIME type of the content, e.g. "text/x-shellscript".
	ContentType string

	// Metadata is stored alongside the object as user-defined metadata.
	Metadata map[string]string
}

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	// ObjectName is the object path within the bucket.
	ObjectName string

	// URL is where the object can be downloaded from once it is public.
	URL string
}

// Options configures how Open constructs a backend.
type Options struct {
	// Region is the S3 region. Ignored by other backends.
	Region string

	// Endpoint overrides the S3 or GCS API endpoint, for compatible stores.
	Endpoint string

	// Getenv looks up credentials, including GOOGLE_APPLICATION_CREDENTIALS
	// for GCS. Defaults to os.Getenv.
	Getenv func(string) string
}

// Open returns the Bucket addressed by rawURL. Supported schemes are s3://,
// gs:// and file://. A bare name is treated as an S3 bucket.
func Open(ctx context.Context, rawURL string, opts Options) (Bucket, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "s3://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid bucket URL %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("storage: bucket URL %q has no bucket name", rawURL)
		}
		return NewS3Bucket(ctx, u.Host, opts)
	case "gs":
		if u.Host == "" {
			return nil, fmt.Errorf("storage: bucket URL %q has no bucket name", rawURL)
		}
		clientOpts, err := gcsClientOptions(u.Host, opts)
		if err != nil {
			return nil, err
		}
		return NewGCSBucket(ctx, u.Host, clientOpts...)
	case "file":
		dir := u.Path
		if u.Host != "" {
			// file://relative/dir
			dir = u.Host + u.Path
		}
		if dir == "" {
			return nil, fmt.Errorf("storage: bucket URL %q has no directory", rawURL)
		}
		return NewDiskBucket(dir)
	default:
		return nil, fmt.Errorf("storage: unsupported bucket scheme %q", u.Scheme)
	}
}
