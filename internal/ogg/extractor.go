package ogg

import (
	"fmt"
	"os"

	"github.com/juho05/log"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/sigguard"
	"github.com/simonhull/audiotag/internal/types"
)

func init() {
	registry.Register(types.FormatOgg, Extractor{})
}

// Extractor reads Ogg Vorbis files. Only the Vorbis comments are used;
// an ID3 tag is never consulted.
type Extractor struct{}

// Extract implements registry.Extractor.
func (Extractor) Extract(path string) (*types.Tag, error) {
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
	packets := newPacketReader(sr)

	first, err := packets.next()
	if err != nil {
		return nil, fmt.Errorf("%s: read identification header: %w", path, err)
	}
	id, err := parseIdentification(first)
	if err != nil {
		return nil, &types.CorruptedFileError{Path: path, Reason: err.Error()}
	}

	second, err := packets.next()
	if err != nil {
		return nil, fmt.Errorf("%s: read comment header: %w", path, err)
	}
	comments, err := parseComments(second)
	if err != nil {
		if comments == nil {
			return nil, &types.CorruptedFileError{Path: path, Reason: err.Error()}
		}
		log.Tracef("ogg: %s: %s", path, err)
	}

	tag := types.New()
	comments.Apply(tag)

	granule, err := findLastGranulePosition(sr, packets.serial)
	if err != nil {
		log.Tracef("ogg: %s: duration: %s", path, err)
		return tag, nil
	}
	tag.Time = types.Seconds(float64(granule) / float64(id.SampleRate))

	return tag, nil
}
