// Package id3 reads the ID3 tag that many audio containers carry alongside
// their native metadata. Extractors consult it when the container itself
// yields nothing.
package id3

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	dhtag "github.com/dhowden/tag"
	"github.com/juho05/log"

	"github.com/simonhull/audiotag/internal/types"
)

// TagReader returns the ID3 fields of the file at path, or nil when the file
// has none or cannot be read.
type TagReader interface {
	ReadTag(path string) *types.Tag
}

// Reader is the TagReader used by every extractor.
type Reader struct{}

// ReadTag implements TagReader. Failures are logged at trace level and
// reported as nil, so an unreadable file and an untagged file look the same.
func (Reader) ReadTag(path string) *types.Tag {
	t, err := Read(path)
	if err != nil {
		log.Tracef("id3: %s: %s", path, err)
		return nil
	}
	return t
}

// frames maps the ID3v2.3/2.4 text frames to record fields.
var frames = []struct {
	id    string
	field types.Field
}{
	{"TPE1", types.FieldArtist},
	{"TIT2", types.FieldTitle},
	{"TALB", types.FieldAlbum},
	{"TRCK", types.FieldTrack},
}

var frameIDs = func() []string {
	ids := make([]string, len(frames))
	for i, f := range frames {
		ids[i] = f.id
	}
	return ids
}()

// Read returns the ID3 fields of the file at path.
//
// ID3v2.3 and 2.4 frames are read first; ID3v2.2 tags go through a second
// parser. Fields still missing afterwards are taken from an ID3v1 trailer.
// The returned Tag never has Time set. types.ErrNoMetadata is returned when
// the file carries no usable field.
func Read(path string) (*types.Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	out := types.New()
	if err := readV2(f, out); err != nil {
		log.Tracef("id3: %s: v2: %s", path, err)
	}
	if err := readV1(f, out); err != nil {
		log.Tracef("id3: %s: v1: %s", path, err)
	}

	if !out.HasText() {
		return nil, types.ErrNoMetadata
	}
	return out, nil
}

func readV2(f io.ReadSeeker, out *types.Tag) error {
	tag, err := id3v2.ParseReader(f, id3v2.Options{Parse: true, ParseFrames: frameIDs})
	if err == nil {
		found := false
		for _, fr := range frames {
			if out.Set(fr.field, firstString(tag.GetTextFrame(fr.id).Text)) {
				found = true
			}
		}
		if found {
			return nil
		}
	}

	// ID3v2.2 and tags the frame parser rejects.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	m, err := dhtag.ReadID3v2Tags(f)
	if err != nil {
		return err
	}
	fill(out, m)
	return nil
}

func readV1(f io.ReadSeeker, out *types.Tag) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	m, err := dhtag.ReadID3v1Tags(f)
	if err != nil {
		return err
	}
	fill(out, m)
	return nil
}

// fill copies the fields of m into the empty fields of out.
func fill(out *types.Tag, m dhtag.Metadata) {
	track, _ := m.Track()
	values := map[types.Field]string{
		types.FieldArtist: m.Artist(),
		types.FieldTitle:  m.Title(),
		types.FieldAlbum:  m.Album(),
	}
	if track > 0 {
		values[types.FieldTrack] = strconv.Itoa(track)
	}
	for field, v := range values {
		if out.Get(field) == "" {
			out.Set(field, v)
		}
	}
}

// firstString returns the first of the NUL-separated strings a text frame
// may hold.
func firstString(text string) string {
	if i := strings.IndexByte(text, 0); i >= 0 {
		return text[:i]
	}
	return text
}
