package mp3

import (
	"bufio"
	"fmt"
	"os"

	"github.com/juho05/log"

	"github.com/simonhull/audiotag/internal/id3"
	"github.com/simonhull/audiotag/internal/merge"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/sigguard"
	"github.com/simonhull/audiotag/internal/types"
)

func init() {
	registry.Register(types.FormatMP3, &Extractor{Fallback: id3.Reader{}})
}

// Extractor reads MPEG audio files. Text fields come from the ID3 tag and
// the duration from the frames; either alone is enough for a record.
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

	seconds, durErr := Duration(bufio.NewReader(f))

	var fallback *types.Tag
	if e.Fallback != nil {
		fallback = e.Fallback.ReadTag(path)
	}

	if durErr != nil {
		if fallback == nil {
			return nil, fmt.Errorf("%s: %w", path, durErr)
		}
		log.Tracef("mp3: %s: duration: %s", path, durErr)
		return fallback, nil
	}
	return merge.WithTime(fallback, types.Seconds(seconds)), nil
}
