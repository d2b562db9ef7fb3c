package audiotag

import "github.com/simonhull/audiotag/internal/types"

// Tag is the normalized metadata record returned by Read.
//
// Empty strings are absent fields. Time holds whole seconds, or UnknownTime
// when the duration could not be determined.
type Tag = types.Tag

// Field identifies a textual field of a Tag.
type Field = types.Field

const (
	FieldArtist = types.FieldArtist
	FieldAlbum  = types.FieldAlbum
	FieldTitle  = types.FieldTitle
	FieldTrack  = types.FieldTrack
)

// UnknownTime marks a Tag whose duration is unknown.
const UnknownTime = types.UnknownTime

// NewTag returns an empty Tag with an unknown duration.
func NewTag() *Tag {
	return types.New()
}
