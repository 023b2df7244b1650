// Package release models published snapshots of the buildpack standard
// library: their version identifiers, where they live in a bucket, and how a
// new snapshot is published.
package release

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyVersionSet is returned when a next version is requested but nothing
// has been published yet.
var ErrEmptyVersionSet = errors.New("no published versions found")

// Version identifies a published snapshot, written v<N> with N >= 1.
type Version int64

// ParseVersion parses a version identifier of the form v<N>. N must be a
// positive decimal integer without leading zeros.
func ParseVersion(s string) (Version, error) {
	digits, ok := strings.CutPrefix(s, "v")
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid version %q: must be of the form v<N>", s)
	}
	if digits[0] == '0' {
		return 0, fmt.Errorf("invalid version %q: must be a positive number without leading zeros", s)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid version %q: must be of the form v<N>", s)
		}
	}

	// A 63-bit limit keeps Next from overflowing.
	n, err := strconv.ParseInt(digits, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version(n), nil
}

func (v Version) String() string {
	return "v" + strconv.FormatInt(int64(v), 10)
}

// Next returns the version that follows v.
func (v Version) Next() Version {
	return v + 1
}

// Latest returns the numerically greatest version. Listing order is not
// trusted: v10 sorts before v9 lexically but is still newer.
func Latest(versions []Version) (Version, error) {
	if len(versions) == 0 {
		return 0, ErrEmptyVersionSet
	}
	latest := versions[0]
	for _, v := range versions[1:] {
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}
