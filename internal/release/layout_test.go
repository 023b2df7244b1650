package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultLayout() Layout {
	return NewLayout(DefaultPrefix, DefaultFilename)
}

func TestNewLayout(t *testing.T) {
	t.Parallel()

	l := NewLayout("buildpack-stdlib", "stdlib.sh")
	assert.Equal(t, "buildpack-stdlib/", l.Prefix)
	assert.Equal(t, "buildpack-stdlib/v3/stdlib.sh", l.VersionKey(3))
	assert.Equal(t, "buildpack-stdlib/latest/stdlib.sh", l.LatestKey())
}

func TestLayoutParseKey(t *testing.T) {
	t.Parallel()

	l := defaultLayout()

	tests := []struct {
		entry string
		want  Version
		ok    bool
	}{
		{entry: "buildpack-stdlib/v1/stdlib.sh", want: 1, ok: true},
		{entry: "buildpack-stdlib/v12/stdlib.sh", want: 12, ok: true},
		{entry: "buildpack-stdlib/v7/", want: 7, ok: true},
		{entry: "buildpack-stdlib/latest/stdlib.sh"},
		{entry: "buildpack-stdlib/latest/"},
		{entry: "buildpack-stdlib/v1/other.sh"},
		{entry: "buildpack-stdlib/v1/nested/stdlib.sh"},
		{entry: "buildpack-stdlib/v1"},
		{entry: "buildpack-stdlib/beta/stdlib.sh"},
		{entry: "buildpack-stdlib/v01/stdlib.sh"},
		{entry: "buildpack-stdlib-old/v3/stdlib.sh"},
		{entry: "other-artifact/v3/file.sh"},
		{entry: "other-artifact/v3/stdlib.sh"},
		{entry: ""},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			t.Parallel()

			got, ok := l.ParseKey(tt.entry)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
