package m4a

import (
	"errors"
	"fmt"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// audioSampleEntry is the sample entry type of an AAC track.
const audioSampleEntry = "mp4a"

var errNoAudioTrack = errors.New("no mp4a track")

// Track is the timing information of an audio track.
type Track struct {
	Timescale uint32
	Duration  uint64
}

// Seconds returns the track length in seconds.
func (t Track) Seconds() float64 {
	if t.Timescale == 0 {
		return 0
	}
	return float64(t.Duration) / float64(t.Timescale)
}

// findAudioTrack returns the first trak in moov whose sample description
// starts with an mp4a entry.
func findAudioTrack(sr *binary.SafeReader, moov *Atom) (*Atom, error) {
	var track *Atom
	var walkErr error
	err := eachAtom(sr, moov.DataOffset(), moov.End(), func(a *Atom) bool {
		if a.Type != "trak" {
			return true
		}
		codec, err := sampleEntryType(sr, a)
		if err != nil {
			// A damaged trak does not rule out a later one.
			walkErr = err
			return true
		}
		if codec == audioSampleEntry {
			track = a
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if track == nil {
		if walkErr != nil {
			return nil, fmt.Errorf("%w: %w", errNoAudioTrack, walkErr)
		}
		return nil, errNoAudioTrack
	}
	return track, nil
}

// sampleEntryType returns the format of the first sample entry of a trak.
func sampleEntryType(sr *binary.SafeReader, trak *Atom) (string, error) {
	stsd, err := findPath(sr, trak, "mdia", "minf", "stbl", "stsd")
	if err != nil {
		return "", err
	}

	// stsd structure:
	// [1 byte]  version
	// [3 bytes] flags
	// [4 bytes] number of entries
	// entries, each [4 bytes] size, [4 bytes] format, ...
	offset := stsd.DataOffset() + 4

	numEntries, err := binary.Read[uint32](sr, offset, "stsd entry count")
	if err != nil {
		return "", err
	}
	if numEntries == 0 {
		return "", nil
	}

	format := make([]byte, 4)
	if err := sr.ReadAt(format, offset+8, "stsd format"); err != nil {
		return "", err
	}
	return string(format), nil
}

// readTrack reads the media header of trak.
func readTrack(sr *binary.SafeReader, trak *Atom) (Track, error) {
	mdhd, err := findPath(sr, trak, "mdia", "mdhd")
	if err != nil {
		return Track{}, err
	}

	timescale, duration, err := parseMediaHeader(sr, mdhd, "mdhd")
	if err != nil {
		return Track{}, err
	}
	if timescale == 0 {
		return Track{}, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: mdhd.Offset,
			Reason: "mdhd timescale is zero",
		}
	}

	return Track{Timescale: timescale, Duration: duration}, nil
}

// parseMediaHeader reads the timescale and duration shared by the mvhd and
// mdhd layouts.
func parseMediaHeader(sr *binary.SafeReader, atom *Atom, name string) (timescale uint32, duration uint64, err error) {
	offset := atom.DataOffset()

	version, err := binary.Read[uint8](sr, offset, name+" version")
	if err != nil {
		return 0, 0, err
	}

	// Skip version and flags
	offset += 4

	if version == 1 {
		return parseMediaHeaderVersion1(sr, offset, name)
	}
	return parseMediaHeaderVersion0(sr, offset, name)
}

// parseMediaHeaderVersion0 parses the 32-bit layout.
func parseMediaHeaderVersion0(sr *binary.SafeReader, offset int64, name string) (timescale uint32, duration uint64, err error) {
	// Skip creation time (4 bytes) and modification time (4 bytes)
	offset += 8

	timescale, err = binary.Read[uint32](sr, offset, name+" timescale")
	if err != nil {
		return 0, 0, err
	}
	offset += 4

	duration32, err := binary.Read[uint32](sr, offset, name+" duration")
	if err != nil {
		return 0, 0, err
	}

	return timescale, uint64(duration32), nil
}

// parseMediaHeaderVersion1 parses the 64-bit layout.
func parseMediaHeaderVersion1(sr *binary.SafeReader, offset int64, name string) (timescale uint32, duration uint64, err error) {
	// Skip creation time (8 bytes) and modification time (8 bytes)
	offset += 16

	timescale, err = binary.Read[uint32](sr, offset, name+" timescale")
	if err != nil {
		return 0, 0, err
	}
	offset += 4

	duration, err = binary.Read[uint64](sr, offset, name+" duration")
	if err != nil {
		return 0, 0, err
	}

	return timescale, duration, nil
}
