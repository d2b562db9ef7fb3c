// Package types provides the core data structures shared by every extractor.
//
// Tag is the normalized metadata record. Format and the error types describe
// how a file was classified and why an extraction produced nothing.
package types

import (
	"io"
	"strconv"
	"strings"
)

// UnknownTime marks a Tag whose duration could not be determined.
const UnknownTime = -1

// Tag is a normalized metadata record.
//
// String fields hold cleaned UTF-8 text. An empty string means the field is
// absent; Set never stores an empty value.
type Tag struct {
	Artist string
	Album  string
	Title  string
	Track  string

	// Time is the playback length in whole seconds, or UnknownTime.
	Time int
}

// Field identifies one of the textual fields of a Tag.
type Field int

const (
	// FieldArtist is the performing artist.
	FieldArtist Field = iota
	// FieldAlbum is the album title.
	FieldAlbum
	// FieldTitle is the track title.
	FieldTitle
	// FieldTrack is the track number, kept as text.
	FieldTrack
)

// New returns an empty Tag with an unknown duration.
func New() *Tag {
	return &Tag{Time: UnknownTime}
}

// Clone returns an independent copy of t. Cloning nil returns nil.
func (t *Tag) Clone() *Tag {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Get returns the value stored for f.
func (t *Tag) Get(f Field) string {
	switch f {
	case FieldArtist:
		return t.Artist
	case FieldAlbum:
		return t.Album
	case FieldTitle:
		return t.Title
	case FieldTrack:
		return t.Track
	}
	return ""
}

// Set cleans v and stores it in f. It reports whether a value was stored;
// values that are empty after cleaning leave the field untouched.
func (t *Tag) Set(f Field, v string) bool {
	v = CleanText(v)
	if v == "" {
		return false
	}
	switch f {
	case FieldArtist:
		t.Artist = v
	case FieldAlbum:
		t.Album = v
	case FieldTitle:
		t.Title = v
	case FieldTrack:
		t.Track = v
	default:
		return false
	}
	return true
}

// HasText reports whether any textual field is present.
func (t *Tag) HasText() bool {
	return t.Artist != "" || t.Album != "" || t.Title != "" || t.Track != ""
}

// HasTime reports whether the duration is known.
func (t *Tag) HasTime() bool {
	return t.Time >= 0
}

// IsEmpty reports whether t carries neither text nor a duration.
func (t *Tag) IsEmpty() bool {
	return t == nil || (!t.HasText() && !t.HasTime())
}

// String returns the debug form, one "Key: value" line per present field.
func (t *Tag) String() string {
	var sb strings.Builder
	_, _ = t.WriteTo(&sb)
	return sb.String()
}

// WriteTo writes the debug form of t to w. Lines appear in the order
// Artist, Album, Track, Title, Time; absent fields are skipped.
func (t *Tag) WriteTo(w io.Writer) (int64, error) {
	if t == nil {
		return 0, nil
	}

	lines := []struct {
		key, value string
	}{
		{"Artist", t.Artist},
		{"Album", t.Album},
		{"Track", t.Track},
		{"Title", t.Title},
	}

	var total int64
	for _, l := range lines {
		if l.value == "" {
			continue
		}
		n, err := io.WriteString(w, l.key+": "+l.value+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	if t.HasTime() {
		n, err := io.WriteString(w, "Time: "+strconv.Itoa(t.Time)+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Seconds rounds a non-negative duration in seconds to the nearest whole
// second, halves rounding up.
func Seconds(s float64) int {
	return int(s + 0.5)
}
