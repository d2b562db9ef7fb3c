package m4a

import (
	"fmt"
	"io"
	"os"
	"strconv"

	dhtag "github.com/dhowden/tag"
	"github.com/juho05/log"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/id3"
	"github.com/simonhull/audiotag/internal/merge"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/sigguard"
	"github.com/simonhull/audiotag/internal/types"
)

func init() {
	e := &Extractor{Fallback: id3.Reader{}}
	registry.Register(types.FormatM4A, e)
	registry.Register(types.FormatM4B, e)
}

// Extractor reads MP4 files that carry an AAC track. The ID3 tag is
// consulted only when the ilst atom yields none of the text fields.
type Extractor struct {
	Fallback id3.TagReader
}

// Extract implements registry.Extractor.
func (e *Extractor) Extract(path string) (*types.Tag, error) {
	release := sigguard.Hold()
	defer release()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	sr := binary.NewSafeReader(f, info.Size(), path)

	moov, err := findAtom(sr, 0, info.Size(), "moov")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	trak, err := findAudioTrack(sr, moov)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	track, err := readTrack(sr, trak)
	if err != nil {
		return nil, err
	}

	tag := types.New()
	tag.Time = types.Seconds(track.Seconds())

	found := false
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		found = readItems(f, path, tag)
	}

	return merge.Lazy(found, tag, func() *types.Tag {
		if e.Fallback == nil {
			return nil
		}
		return e.Fallback.ReadTag(path)
	}), nil
}

// readItems copies the iTunes metadata items into tag and reports whether
// any of them was present.
func readItems(f *os.File, path string, tag *types.Tag) bool {
	m, err := dhtag.ReadAtoms(f)
	if err != nil {
		log.Tracef("m4a: %s: metadata: %s", path, err)
		return false
	}

	found := false
	set := func(field types.Field, v string) {
		if tag.Set(field, v) {
			found = true
		}
	}
	set(types.FieldArtist, m.Artist())
	set(types.FieldAlbum, m.Album())
	set(types.FieldTitle, m.Title())
	if n, _ := m.Track(); n > 0 {
		set(types.FieldTrack, strconv.Itoa(n))
	}
	return found
}
