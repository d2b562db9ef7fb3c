// Package vorbis provides shared Vorbis comment handling.
//
// Vorbis comments are used by both FLAC and Ogg Vorbis formats.
// The format is identical: UTF-8 strings in "KEY=VALUE" format.
package vorbis

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/simonhull/audiotag/internal/types"
)

// Comment is a single KEY=VALUE entry.
type Comment struct {
	Key   string
	Value string
}

// Comments is an ordered comment list as stored in the stream.
type Comments []Comment

// fields maps the recognized keys, upper-cased, to record fields.
var fields = map[string]types.Field{
	"ARTIST":      types.FieldArtist,
	"TITLE":       types.FieldTitle,
	"ALBUM":       types.FieldAlbum,
	"TRACKNUMBER": types.FieldTrack,
}

// ParseComment splits a single Vorbis comment in "KEY=VALUE" format.
//
// Returns an error if the comment has no '=' separator.
func ParseComment(comment string) (Comment, error) {
	key, value, ok := strings.Cut(comment, "=")
	if !ok {
		return Comment{}, fmt.Errorf("missing '=' in comment: %s", comment)
	}
	return Comment{Key: key, Value: value}, nil
}

// Apply stores the recognized comments in tag and reports whether any of
// the recognized keys appeared at all.
//
// Keys match case-insensitively. For each field the first occurrence with a
// non-empty value wins; later duplicates are ignored.
func (c Comments) Apply(tag *types.Tag) (found bool) {
	seen := make(map[types.Field]bool, len(fields))
	for _, cm := range c {
		field, ok := fields[strings.ToUpper(cm.Key)]
		if !ok {
			continue
		}
		found = true
		if seen[field] {
			continue
		}
		if tag.Set(field, cm.Value) {
			seen[field] = true
		}
	}
	return found
}

// ParseCommentBlock decodes a Vorbis comment block: the vendor string
// followed by the comment list, all lengths little-endian.
//
// Entries without '=' are skipped. A block truncated mid-list returns the
// comments read so far together with an error.
func ParseCommentBlock(data []byte) (Comments, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("comment block too short: %d bytes", len(data))
	}
	vendorLen := int(binary.LittleEndian.Uint32(data))
	offset := 4 + vendorLen
	if vendorLen < 0 || offset+4 > len(data) {
		return nil, fmt.Errorf("vendor string length %d exceeds block", vendorLen)
	}

	count := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	var out Comments
	for i := uint32(0); i < count; i++ {
		if offset+4 > len(data) {
			return out, fmt.Errorf("comment %d: truncated length", i)
		}
		n := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		if n < 0 || offset+n > len(data) {
			return out, fmt.Errorf("comment %d: length %d exceeds block", i, n)
		}
		cm, err := ParseComment(string(data[offset : offset+n]))
		offset += n
		if err != nil {
			continue
		}
		out = append(out, cm)
	}
	return out, nil
}

// FromPairs converts already split key/value pairs, as decoders such as
// mewkiz/flac return them, into Comments.
func FromPairs(pairs [][2]string) Comments {
	out := make(Comments, len(pairs))
	for i, p := range pairs {
		out[i] = Comment{Key: p[0], Value: p[1]}
	}
	return out
}
