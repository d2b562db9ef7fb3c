// Package generic provides duration-only extraction for formats whose
// decoders expose a playing time but no tags of interest.
package generic

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"

	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/sigguard"
	"github.com/simonhull/audiotag/internal/types"
)

func init() {
	registry.Register(types.FormatWAV, Extractor{Decoder: DecoderFunc(WAVDuration)})
	registry.Register(types.FormatAIFF, Extractor{Decoder: DecoderFunc(AIFFDuration)})
}

// Decoder reports the playing time of the file at path.
type Decoder interface {
	Duration(path string) (time.Duration, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(path string) (time.Duration, error)

// Duration implements Decoder.
func (f DecoderFunc) Duration(path string) (time.Duration, error) {
	return f(path)
}

// Extractor builds a record holding nothing but the decoder's duration.
type Extractor struct {
	Decoder Decoder
}

// Extract implements registry.Extractor.
func (e Extractor) Extract(path string) (*types.Tag, error) {
	release := sigguard.Hold()
	defer release()

	d, err := e.Decoder.Duration(path)
	if err != nil {
		return nil, err
	}
	if d < 0 {
		return nil, fmt.Errorf("%s: %w: negative duration", path, types.ErrNoMetadata)
	}

	tag := types.New()
	tag.Time = types.Seconds(d.Seconds())
	return tag, nil
}

// WAVDuration decodes the RIFF headers of a WAV file.
func WAVDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return 0, &types.CorruptedFileError{Path: path, Reason: "invalid WAV headers"}
	}
	return d.Duration()
}

// AIFFDuration decodes the COMM chunk of an AIFF file.
func AIFFDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := aiff.NewDecoder(f).Duration()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
