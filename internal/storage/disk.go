package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DiskBucket stores objects as files below a directory on the local
// filesystem. Object metadata is not persisted. The URL returned for an
// object is a file:// URL.
type DiskBucket struct {
	baseDir string
}

// NewDiskBucket creates a DiskBucket rooted at baseDir. The directory is
// created if it does not already exist.
func NewDiskBucket(baseDir string) (*DiskBucket, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create local base directory %q: %w", baseDir, err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to resolve absolute path for %q: %w", baseDir, err)
	}
	return &DiskBucket{baseDir: abs}, nil
}

func (b *DiskBucket) Name() string {
	return b.baseDir
}

// List walks the base directory and yields the slash-separated names of all
// regular files beginning with prefix.
func (b *DiskBucket) List(_ context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(b.baseDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(b.baseDir, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(rel)
			if !strings.HasPrefix(name, prefix) {
				return nil
			}
			if !yield(name, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", &Error{Op: "list", Bucket: b.baseDir, Err: err})
		}
	}
}

// Upload writes content to baseDir/objectName, creating any intermediate
// directories as needed.
func (b *DiskBucket) Upload(_ context.Context, req *UploadRequest) (*UploadResult, error) {
	dest, err := b.path(req.ObjectName)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, &Error{Op: "upload", Bucket: b.baseDir, Key: req.ObjectName, Err: err}
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, &Error{Op: "upload", Bucket: b.baseDir, Key: req.ObjectName, Err: err}
	}

	// An overwritten object is private again until MakePublic is called,
	// matching the ACL reset of a PutObject.
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return nil, &Error{Op: "upload", Bucket: b.baseDir, Key: req.ObjectName, Err: err}
	}
	if _, err := io.Copy(f, req.Content); err != nil {
		_ = f.Close()
		return nil, &Error{Op: "upload", Bucket: b.baseDir, Key: req.ObjectName, Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &Error{Op: "upload", Bucket: b.baseDir, Key: req.ObjectName, Err: err}
	}

	fileURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(dest)}

	return &UploadResult{
		ObjectName: req.ObjectName,
		URL:        fileURL.String(),
	}, nil
}

// MakePublic makes the file world-readable.
func (b *DiskBucket) MakePublic(_ context.Context, objectName string) error {
	dest, err := b.path(objectName)
	if err != nil {
		return err
	}
	if err := os.Chmod(dest, 0o644); err != nil {
		return &Error{Op: "make-public", Bucket: b.baseDir, Key: objectName, Err: err}
	}
	return nil
}

// path resolves objectName below the base directory, rejecting names that
// would escape it.
func (b *DiskBucket) path(objectName string) (string, error) {
	dest := filepath.Join(b.baseDir, filepath.FromSlash(objectName))
	if !strings.HasPrefix(dest, b.baseDir+string(filepath.Separator)) {
		return "", &Error{Op: "resolve", Bucket: b.baseDir, Key: objectName, Err: errors.New("object name escapes bucket directory")}
	}
	return dest, nil
}
