package aac

import (
	"errors"

	"github.com/simonhull/audiotag/internal/binary"
)

// ADIF header fields, as bit offsets from the start of the header.
const (
	adifMagic = "ADIF"

	adifCopyrightFlagOffset = 32
	adifCopyrightIDWidth    = 72

	// original_copy, home and bitstream_type precede the bitrate.
	adifFlagsWidth   = 3
	adifBitrateWidth = 23
)

var errNotADIF = errors.New("missing ADIF magic")

// IsADIF reports whether b starts with an ADIF header.
func IsADIF(b []byte) bool {
	return len(b) >= len(adifMagic) && string(b[:len(adifMagic)]) == adifMagic
}

// ADIFInfo is the decoded ADIF header.
type ADIFInfo struct {
	Bitrate  int
	FileSize int64
}

// ParseADIF decodes the bitrate from an ADIF header. fileSize is the size of
// the whole file the header came from.
func ParseADIF(header []byte, fileSize int64) (ADIFInfo, error) {
	if !IsADIF(header) {
		return ADIFInfo{}, errNotADIF
	}

	offset := uint(adifCopyrightFlagOffset + 1)
	if binary.Bits(header, adifCopyrightFlagOffset, 1) == 1 {
		offset += adifCopyrightIDWidth
	}
	offset += adifFlagsWidth

	if need := (offset + adifBitrateWidth + 7) / 8; uint(len(header)) < need {
		return ADIFInfo{}, errors.New("ADIF header truncated")
	}

	return ADIFInfo{
		Bitrate:  int(binary.Bits(header, offset, adifBitrateWidth)),
		FileSize: fileSize,
	}, nil
}

// Duration returns fileSize*8/bitrate in seconds. An empty file has a
// duration of 0; a zero bitrate leaves the duration unknown.
func (i ADIFInfo) Duration() (seconds float64, ok bool) {
	if i.FileSize == 0 {
		return 0, true
	}
	if i.Bitrate <= 0 {
		return 0, false
	}
	return float64(i.FileSize) * 8 / float64(i.Bitrate), true
}
