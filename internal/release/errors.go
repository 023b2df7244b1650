package release

import "fmt"

// LocalReadError is returned when the source file cannot be read. No storage
// call has been made when it is returned.
type LocalReadError struct {
	Path string
	Err  error
}

func (e *LocalReadError) Error() string {
	return fmt.Sprintf("failed to read %q: %v", e.Path, e.Err)
}

func (e *LocalReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError is returned when writing or publishing an object fails.
// Alias is set when the failing key is the latest alias, in which case the
// version key has already been written.
type StorageWriteError struct {
	Key   string
	Alias bool
	Err   error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to publish %s: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}
