package release

import "strings"

const (
	// DefaultPrefix scopes the keys managed by this tool within a bucket that
	// is shared with other artefact families.
	DefaultPrefix = "buildpack-stdlib/"

	// DefaultFilename is the name of the published file, both locally and in
	// the bucket.
	DefaultFilename = "stdlib.sh"

	// LatestName is the path segment of the latest alias.
	LatestName = "latest"
)

// Layout describes where published files live in a bucket:
//
//	<prefix><version>/<filename>
//	<prefix>latest/<filename>
type Layout struct {
	Prefix   string
	Filename string
}

// NewLayout returns a Layout for prefix and filename. The prefix always ends
// in a slash so that "buildpack-stdlib" cannot match "buildpack-stdlib-old".
func NewLayout(prefix, filename string) Layout {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return Layout{Prefix: prefix, Filename: filename}
}

// Key returns the object key for the named snapshot.
func (l Layout) Key(name string) string {
	return l.Prefix + name + "/" + l.Filename
}

// VersionKey returns the object key for version v.
func (l Layout) VersionKey(v Version) string {
	return l.Key(v.String())
}

// LatestKey returns the object key of the latest alias.
func (l Layout) LatestKey() string {
	return l.Key(LatestName)
}

// ParseKey extracts the version from a listing entry. Both the object form
// "<prefix>vN/<filename>" and the directory form "<prefix>vN/" match. The
// latest alias and anything outside the prefix do not.
func (l Layout) ParseKey(entry string) (Version, bool) {
	rest, ok := strings.CutPrefix(entry, l.Prefix)
	if !ok {
		return 0, false
	}
	name, tail, ok := strings.Cut(rest, "/")
	if !ok || (tail != "" && tail != l.Filename) {
		return 0, false
	}
	if name == LatestName {
		return 0, false
	}
	v, err := ParseVersion(name)
	if err != nil {
		return 0, false
	}
	return v, true
}
