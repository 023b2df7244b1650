package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	noEnv := Options{Getenv: func(string) string { return "" }}

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "bucket")
		b, err := Open(ctx, "file://"+dir, noEnv)
		require.NoError(t, err)
		require.IsType(t, &DiskBucket{}, b)
		assert.Equal(t, dir, b.Name())
	})

	t.Run("s3 with credentials", func(t *testing.T) {
		t.Parallel()

		b, err := Open(ctx, "s3://lang-common", Options{Getenv: func(key string) string {
			return map[string]string{
				"AWS_ACCESS_KEY_ID":     "id",
				"AWS_SECRET_ACCESS_KEY": "secret",
			}[key]
		}})
		require.NoError(t, err)
		require.IsType(t, &S3Bucket{}, b)
		assert.Equal(t, "lang-common", b.Name())
	})

	t.Run("bare name is s3", func(t *testing.T) {
		t.Parallel()

		_, err := Open(ctx, "lang-common", noEnv)
		require.Error(t, err)
		assert.True(t, IsUnauthenticated(err))
	})

	missingKey := filepath.Join(t.TempDir(), "missing-key.json")
	gcsEnv := Options{Getenv: func(key string) string {
		if key == "GOOGLE_APPLICATION_CREDENTIALS" {
			return missingKey
		}
		return ""
	}}

	t.Run("gs with unreadable credentials", func(t *testing.T) {
		t.Parallel()

		_, err := Open(ctx, "gs://lang-common", gcsEnv)
		require.Error(t, err)
		assert.True(t, IsUnauthenticated(err))

		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "open", serr.Op)
		assert.Equal(t, "lang-common", serr.Bucket)
	})

	t.Run("gs emulator without credentials", func(t *testing.T) {
		t.Parallel()

		opts := gcsEnv
		opts.Endpoint = "http://127.0.0.1:4443/storage/v1/"
		b, err := Open(ctx, "gs://lang-common", opts)
		require.NoError(t, err)
		require.IsType(t, &GCSBucket{}, b)
		assert.Equal(t, "lang-common", b.Name())
	})

	tests := map[string]string{
		"unsupported scheme": "ftp://lang-common",
		"s3 without bucket":  "s3://",
		"gs without bucket":  "gs://",
		"file without path":  "file://",
	}
	for name, rawURL := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Open(ctx, rawURL, noEnv)
			require.Error(t, err)
			assert.False(t, IsUnauthenticated(err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := &Error{Op: "upload", Bucket: "lang-common", Key: "p/v1/stdlib.sh", Err: ErrBucketNotFound}
	assert.EqualError(t, err, "storage: upload lang-common/p/v1/stdlib.sh: bucket not found")
	assert.ErrorIs(t, err, ErrBucketNotFound)

	err = &Error{Op: "list", Bucket: "lang-common", Err: ErrUnauthenticated}
	assert.EqualError(t, err, "storage: list bucket lang-common: unauthenticated")
}
