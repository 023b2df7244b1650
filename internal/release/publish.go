package release

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tomasbasham/stdlib-upload/internal/storage"
)

const (
	// MetadataUploadID is shared by every object written in one publish, so
	// the latest alias can be matched to the version it was copied from.
	MetadataUploadID = "upload-id"

	// MetadataVersion records the version an object was published as.
	MetadataVersion = "stdlib-version"

	// DefaultContentType is the content type of published objects.
	DefaultContentType = "text/x-shellscript"
)

// Request describes a single publish.
type Request struct {
	// Version is the snapshot to publish.
	Version Version

	// Latest additionally overwrites the latest alias with the same content.
	Latest bool

	// Content is the file body, as returned by ReadSource.
	Content []byte
}

// ReadSource reads the local file to publish in full. It fails with a
// *LocalReadError for anything that is not a readable regular file.
func ReadSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LocalReadError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LocalReadError{Path: path, Err: errors.New("not a regular file")}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LocalReadError{Path: path, Err: err}
	}
	return content, nil
}

// Object is a single object written by a publish.
type Object struct {
	Key    string
	URL    string
	Public bool
}

// Result is the outcome of a successful publish.
type Result struct {
	UploadID string
	Version  Version
	Objects  []Object
}

// Publisher writes snapshots to a bucket.
type Publisher struct {
	bucket      storage.Bucket
	layout      Layout
	public      bool
	contentType string
	logger      logrus.FieldLogger
	newID       func() string
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPublic controls whether written objects are made publicly readable.
// Defaults to true.
func WithPublic(public bool) Option {
	return func(p *Publisher) {
		p.public = public
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithContentType overrides the content type of written objects.
func WithContentType(contentType string) Option {
	return func(p *Publisher) {
		p.contentType = contentType
	}
}

// NewPublisher creates a Publisher writing into bucket according to layout.
func NewPublisher(bucket storage.Bucket, layout Layout, opts ...Option) *Publisher {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Publisher{
		bucket:      bucket,
		layout:      layout,
		public:      true,
		contentType: DefaultContentType,
		logger:      discard,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes the request content to the version key, then to the latest
// alias if requested. The two writes are independent: if the alias write
// fails the version key stays published and the returned *StorageWriteError
// has Alias set.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		UploadID: p.newID(),
		Version:  req.Version,
	}

	keys := []string{p.layout.VersionKey(req.Version)}
	if req.Latest {
		keys = append(keys, p.layout.LatestKey())
	}

	for i, key := range keys {
		obj, err := p.put(ctx, key, req.Content, result)
		if err != nil {
			return nil, &StorageWriteError{Key: key, Alias: i > 0, Err: err}
		}
		result.Objects = append(result.Objects, *obj)
	}

	return result, nil
}

func (p *Publisher) put(ctx context.Context, key string, content []byte, result *Result) (*Object, error) {
	log := p.logger.WithFields(logrus.Fields{
		"bucket":    p.bucket.Name(),
		"key":       key,
		"upload_id": result.UploadID,
	})

	log.WithField("bytes", len(content)).Debug("uploading object")
	uploaded, err := p.bucket.Upload(ctx, &storage.UploadRequest{
		ObjectName:  key,
		Content:     bytes.NewReader(content),
		Size:        int64(len(content)),
		ContentType: p.contentType,
		Metadata: map[string]string{
			MetadataUploadID: result.UploadID,
			MetadataVersion:  result.Version.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	if p.public {
		log.Debug("marking object public")
		if err := p.bucket.MakePublic(ctx, key); err != nil {
			return nil, err
		}
	}

	return &Object{Key: uploaded.ObjectName, URL: uploaded.URL, Public: p.public}, nil
}
