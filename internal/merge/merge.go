// Package merge combines a container's own metadata with the fallback ID3
// tag.
//
// Two policies exist. Stream formats without a metadata container (AAC,
// MP3) start from the fallback tag and add the scanned duration. Containers
// with their own metadata (MP4, FLAC) keep their record unless none of its
// text fields were found, in which case the fallback replaces the text but
// the container's duration survives.
package merge

import "github.com/simonhull/audiotag/internal/types"

// WithTime returns a copy of fallback, or an empty record when fallback is
// nil, with Time set to seconds.
func WithTime(fallback *types.Tag, seconds int) *types.Tag {
	out := fallback.Clone()
	if out == nil {
		out = types.New()
	}
	out.Time = seconds
	return out
}

// PreferFallback replaces native with fallback while keeping native's Time.
// A nil fallback leaves native unchanged.
func PreferFallback(native, fallback *types.Tag) *types.Tag {
	if fallback == nil {
		return native
	}
	out := fallback.Clone()
	out.Time = types.UnknownTime
	if native != nil {
		out.Time = native.Time
	}
	return out
}

// Lazy applies PreferFallback only when the container found no text field,
// so read is never called on the common path.
func Lazy(found bool, native *types.Tag, read func() *types.Tag) *types.Tag {
	if found {
		return native
	}
	return PreferFallback(native, read())
}
