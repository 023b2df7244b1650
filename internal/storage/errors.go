package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when credentials are missing or rejected
	// by the backend.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrBucketNotFound is returned when the target bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)

// Error describes a failed storage operation along with the bucket and
// object it was acting on.
type Error struct {
	// Op is the operation that failed, e.g. "list", "upload", "make-public".
	Op string

	// Bucket is the bucket name, if known.
	Bucket string

	// Key is the object name, if applicable.
	Key string

	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("storage: %s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("storage: %s bucket %s: %v", e.Op, e.Bucket, e.Err)
	default:
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnauthenticated reports whether err was caused by missing or invalid
// credentials.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
