package types

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/simonhull/audiotag/internal/binary"
)

// Format represents the detected audio format
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatFLAC represents FLAC audio files.
	FormatFLAC
	// FormatMP3 represents MP3 audio files.
	FormatMP3
	// FormatM4A represents MP4 audio files.
	FormatM4A
	// FormatM4B represents M4B audiobook files.
	FormatM4B
	// FormatOgg represents Ogg Vorbis audio files.
	FormatOgg
	// FormatAAC represents raw AAC streams (ADTS or ADIF).
	FormatAAC
	// FormatWAV represents WAV audio files.
	FormatWAV
	// FormatAIFF represents AIFF audio files.
	FormatAIFF
)

var formatNames = [...]string{
	FormatUnknown: "Unknown",
	FormatFLAC:    "FLAC",
	FormatMP3:     "MP3",
	FormatM4A:     "M4A",
	FormatM4B:     "M4B",
	FormatOgg:     "Ogg Vorbis",
	FormatAAC:     "AAC",
	FormatWAV:     "WAV",
	FormatAIFF:    "AIFF",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "Unknown"
	}
	return formatNames[f]
}

// Formats lists every known format except FormatUnknown.
func Formats() []Format {
	return []Format{FormatFLAC, FormatMP3, FormatM4A, FormatM4B, FormatOgg, FormatAAC, FormatWAV, FormatAIFF}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatFLAC:
		return []string{".flac"}
	case FormatMP3:
		return []string{".mp3"}
	case FormatM4A:
		return []string{".m4a", ".mp4", ".m4p"}
	case FormatM4B:
		return []string{".m4b"}
	case FormatOgg:
		return []string{".ogg", ".oga"}
	case FormatAAC:
		return []string{".aac"}
	case FormatWAV:
		return []string{".wav"}
	case FormatAIFF:
		return []string{".aiff", ".aif"}
	default:
		return nil
	}
}

// ParseFormat maps a format name or extension, case-insensitively, to a
// Format. "flac", ".flac" and "FLAC" all yield FormatFLAC.
func ParseFormat(name string) Format {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatUnknown
	}
	if name == "vorbis" || name == "ogg vorbis" {
		return FormatOgg
	}
	for _, f := range Formats() {
		if strings.ToLower(f.String()) == name {
			return f
		}
		for _, ext := range f.Extensions() {
			if ext == name || ext[1:] == name {
				return f
			}
		}
	}
	return FormatUnknown
}

// FormatFromExtension selects a format from the file name suffix alone.
func FormatFromExtension(path string) Format {
	ext := filepath.Ext(path)
	if ext == "" {
		return FormatUnknown
	}
	return ParseFormat(ext)
}

// DetectFormat determines the audio file format by examining magic bytes.
//
// A leading ID3v2 tag is skipped so that tagged AAC streams are told apart
// from MP3. Detection does not validate the entire file structure.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) { //nolint:gocyclo // Format detection requires checking multiple magic byte patterns
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	sr := binary.NewSafeReader(r, size, path)

	magic := make([]byte, 4)
	if err := sr.ReadAt(magic, 0, "file magic bytes"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	if string(magic) == "fLaC" {
		return FormatFLAC, nil
	}

	// An ID3v2 tag may precede either MP3 or ADTS frames.
	if string(magic[:3]) == "ID3" {
		header := make([]byte, 10)
		if err := sr.ReadAt(header, 0, "ID3v2 header"); err != nil {
			return FormatMP3, nil
		}
		skip := int64(binary.Synchsafe(header[6:10])) + 10
		if header[3] >= 4 && header[5]&0x10 != 0 {
			skip += 10 // v2.4 footer
		}
		next := make([]byte, 4)
		if err := sr.ReadAt(next, skip, "stream after ID3v2 tag"); err != nil {
			return FormatMP3, nil
		}
		if isADTS(next) || string(next) == "ADIF" {
			return FormatAAC, nil
		}
		if string(next) == "fLaC" {
			return FormatFLAC, nil
		}
		return FormatMP3, nil
	}

	if string(magic) == "ADIF" || isADTS(magic) {
		return FormatAAC, nil
	}

	// MP3 frame sync (11 bits set)
	if magic[0] == 0xFF && (magic[1]&0xE0) == 0xE0 {
		return FormatMP3, nil
	}

	if string(magic) == "OggS" { //nolint:nestif // Nested structure is clearer than extracting to separate function
		// First packet starts after 27 header bytes and the segment table.
		if size >= 36 {
			segCount := make([]byte, 1)
			if err := sr.ReadAt(segCount, 26, "segment count"); err == nil {
				packetOffset := int64(27 + int(segCount[0]))
				codecMagic := make([]byte, 8)
				if err := sr.ReadAt(codecMagic, packetOffset, "codec magic"); err == nil {
					if string(codecMagic) == "OpusHead" {
						return FormatUnknown, &UnsupportedFormatError{
							Path:   path,
							Reason: "Ogg Opus streams are not supported",
						}
					}
				}
			}
		}
		return FormatOgg, nil
	}

	if string(magic) == "RIFF" && size >= 12 {
		waveTag := make([]byte, 4)
		if err := sr.ReadAt(waveTag, 8, "WAVE tag"); err == nil && string(waveTag) == "WAVE" {
			return FormatWAV, nil
		}
	}

	if string(magic) == "FORM" && size >= 12 {
		aiffTag := make([]byte, 4)
		if err := sr.ReadAt(aiffTag, 8, "AIFF tag"); err == nil {
			if string(aiffTag) == "AIFF" || string(aiffTag) == "AIFC" {
				return FormatAIFF, nil
			}
		}
	}

	return detectMP4(sr, path)
}

// isADTS reports whether b starts with an ADTS sync word (layer 0).
func isADTS(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xF6 == 0xF0
}

// detectMP4 checks for an ftyp atom and classifies its major brand.
func detectMP4(sr *binary.SafeReader, path string) (Format, error) {
	atomSize, err := binary.Read[uint32](sr, 0, "ftyp atom size")
	if err != nil {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "failed to read file header"}
	}

	atomType := make([]byte, 4)
	if err := sr.ReadAt(atomType, 4, "ftyp atom type"); err != nil || string(atomType) != "ftyp" {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "unsupported file format"}
	}

	// size + type + brand + version
	if atomSize < 16 {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "ftyp atom too small"}
	}

	brand := make([]byte, 4)
	if err := sr.ReadAt(brand, 8, "major brand"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "failed to read major brand"}
	}

	switch string(brand) {
	case "M4B ":
		return FormatM4B, nil
	case "M4A ", "mp42", "mp41", "isom", "iso2", "dash":
		return FormatM4A, nil
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unsupported file brand",
	}
}
