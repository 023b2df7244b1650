package release

import (
	"context"
	"iter"
	"slices"
)

// Lister is the read side of a storage bucket.
type Lister interface {
	List(ctx context.Context, prefix string) iter.Seq2[string, error]
}

// Versions lazily yields the version of every listing entry under the
// layout's prefix that matches the layout. Non-matching entries are skipped.
// Order follows the listing; callers that care must sort.
func Versions(ctx context.Context, lister Lister, layout Layout) iter.Seq2[Version, error] {
	return func(yield func(Version, error) bool) {
		for key, err := range lister.List(ctx, layout.Prefix) {
			if err != nil {
				yield(0, err)
				return
			}
			v, ok := layout.ParseKey(key)
			if !ok {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Collect drains seq, stopping at the first error.
func Collect(seq iter.Seq2[Version, error]) ([]Version, error) {
	var versions []Version
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// Published returns the distinct published versions in ascending order.
func Published(ctx context.Context, lister Lister, layout Layout) ([]Version, error) {
	versions, err := Collect(Versions(ctx, lister, layout))
	if err != nil {
		return nil, err
	}
	slices.Sort(versions)
	return slices.Compact(versions), nil
}

// NextVersion returns the version following the greatest published one. It
// returns ErrEmptyVersionSet if nothing has been published.
func NextVersion(ctx context.Context, lister Lister, layout Layout) (Version, error) {
	versions, err := Collect(Versions(ctx, lister, layout))
	if err != nil {
		return 0, err
	}
	latest, err := Latest(versions)
	if err != nil {
		return 0, err
	}
	return latest.Next(), nil
}
