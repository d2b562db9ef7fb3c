package audiotag

import (
	"io"

	"github.com/simonhull/audiotag/internal/types"
)

// Format is an alias to types.Format.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown = types.FormatUnknown
	FormatFLAC    = types.FormatFLAC
	FormatMP3     = types.FormatMP3
	FormatM4A     = types.FormatM4A
	FormatM4B     = types.FormatM4B
	FormatOgg     = types.FormatOgg
	FormatAAC     = types.FormatAAC
	FormatWAV     = types.FormatWAV
	FormatAIFF    = types.FormatAIFF
)

// DetectFormat is a wrapper around types.DetectFormat.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}

// FormatFromExtension selects a format from the file name suffix alone.
// It returns FormatUnknown for unrecognized suffixes.
func FormatFromExtension(path string) Format {
	return types.FormatFromExtension(path)
}

// ParseFormat maps a format name or extension such as "flac" or ".m4b" to a
// Format.
func ParseFormat(name string) Format {
	return types.ParseFormat(name)
}
