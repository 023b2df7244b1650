package release

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/stdlib-upload/internal/storage/storagetest"
)

func TestVersions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	layout := defaultLayout()

	t.Run("empty bucket", func(t *testing.T) {
		t.Parallel()

		versions, err := Collect(Versions(ctx, storagetest.New("b"), layout))
		require.NoError(t, err)
		assert.Empty(t, versions)
	})

	t.Run("keeps listing order and skips foreign keys", func(t *testing.T) {
		t.Parallel()

		bucket := storagetest.New("b").Seed(
			"buildpack-stdlib/v2/stdlib.sh",
			"other-artifact/v3/file.sh",
			"buildpack-stdlib/latest/stdlib.sh",
			"buildpack-stdlib/v1/stdlib.sh",
			"buildpack-stdlib/README.md",
		)

		versions, err := Collect(Versions(ctx, bucket, layout))
		require.NoError(t, err)
		assert.Equal(t, []Version{2, 1}, versions)
	})

	t.Run("stops when the consumer stops", func(t *testing.T) {
		t.Parallel()

		bucket := storagetest.New("b").Seed(
			"buildpack-stdlib/v1/stdlib.sh",
			"buildpack-stdlib/v2/stdlib.sh",
		)
		bucket.ListErr = errors.New("never reached")

		var seen []Version
		for v, err := range Versions(ctx, bucket, layout) {
			require.NoError(t, err)
			seen = append(seen, v)
			break
		}
		assert.Equal(t, []Version{1}, seen)
	})

	t.Run("listing error", func(t *testing.T) {
		t.Parallel()

		bucket := storagetest.New("b").Seed("buildpack-stdlib/v1/stdlib.sh")
		bucket.ListErr = errors.New("connection reset")

		_, err := Collect(Versions(ctx, bucket, layout))
		assert.EqualError(t, err, "connection reset")
	})
}

func TestPublished(t *testing.T) {
	t.Parallel()

	bucket := storagetest.New("b").Seed(
		"buildpack-stdlib/v1/stdlib.sh",
		"buildpack-stdlib/latest/stdlib.sh",
		"buildpack-stdlib/v10/",
		"buildpack-stdlib/v10/stdlib.sh",
		"buildpack-stdlib/v2/stdlib.sh",
	)

	versions, err := Published(context.Background(), bucket, defaultLayout())
	require.NoError(t, err)
	assert.Equal(t, []Version{1, 2, 10}, versions)
}

func TestNextVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	layout := defaultLayout()

	orders := [][]string{
		{"buildpack-stdlib/v1/stdlib.sh", "buildpack-stdlib/v2/stdlib.sh", "buildpack-stdlib/v3/stdlib.sh"},
		{"buildpack-stdlib/v3/stdlib.sh", "buildpack-stdlib/v1/stdlib.sh", "buildpack-stdlib/v2/stdlib.sh"},
		{"buildpack-stdlib/v2/stdlib.sh", "buildpack-stdlib/v3/stdlib.sh", "buildpack-stdlib/v1/stdlib.sh"},
	}
	for _, keys := range orders {
		next, err := NextVersion(ctx, storagetest.New("b").Seed(keys...), layout)
		require.NoError(t, err)
		assert.Equal(t, "v4", next.String(), "listing order %v", keys)
	}

	t.Run("lexical order is not numeric order", func(t *testing.T) {
		t.Parallel()

		bucket := storagetest.New("b").Seed(
			"buildpack-stdlib/v10/stdlib.sh",
			"buildpack-stdlib/v9/stdlib.sh",
		)
		next, err := NextVersion(ctx, bucket, layout)
		require.NoError(t, err)
		assert.Equal(t, Version(11), next)
	})

	t.Run("nothing published", func(t *testing.T) {
		t.Parallel()

		bucket := storagetest.New("b").Seed("buildpack-stdlib/latest/stdlib.sh")
		_, err := NextVersion(ctx, bucket, layout)
		assert.ErrorIs(t, err, ErrEmptyVersionSet)
	})
}
