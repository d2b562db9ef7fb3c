// Package flac extracts tags from FLAC files.
package flac

import (
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"

	"github.com/simonhull/audiotag/internal/id3"
	"github.com/simonhull/audiotag/internal/merge"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/sigguard"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

func init() {
	registry.Register(types.FormatFLAC, &Extractor{Fallback: id3.Reader{}})
}

// Extractor reads FLAC metadata blocks. The ID3 tag is consulted when no
// Vorbis comment names one of the text fields, but never for a stream whose
// metadata cannot be parsed at all.
type Extractor struct {
	Fallback id3.TagReader
}

// Extract implements registry.Extractor.
func (e *Extractor) Extract(path string) (*types.Tag, error) {
	release := sigguard.Hold()
	defer release()

	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer stream.Close()

	tag := types.New()
	if info := stream.Info; info != nil && info.SampleRate > 0 {
		tag.Time = types.Seconds(float64(info.NSamples) / float64(info.SampleRate))
	}

	found := commentsOf(stream.Blocks).Apply(tag)

	return merge.Lazy(found, tag, func() *types.Tag {
		if e.Fallback == nil {
			return nil
		}
		return e.Fallback.ReadTag(path)
	}), nil
}

// commentsOf joins the entries of every VORBIS_COMMENT block in stream
// order.
func commentsOf(blocks []*meta.Block) vorbis.Comments {
	var out vorbis.Comments
	for _, block := range blocks {
		if vc, ok := block.Body.(*meta.VorbisComment); ok {
			out = append(out, vorbis.FromPairs(vc.Tags)...)
		}
	}
	return out
}
