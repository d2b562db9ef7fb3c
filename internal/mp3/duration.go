// Package mp3 extracts tags from MPEG audio files.
package mp3

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/dmulholl/mp3lib"
)

// VBR header layout, relative to the start of the frame.
const (
	frameHeaderSize = 4

	xingFlagsOffset = 4 // after the "Xing"/"Info" marker
	xingFramesFlag  = 0x0001

	vbriOffset       = frameHeaderSize + 32
	vbriFramesOffset = vbriOffset + 14
)

var errNoFrames = errors.New("no MPEG audio frames")

// sideInfoSize returns the length of the Layer III side information that
// precedes a Xing header.
func sideInfoSize(frame *mp3lib.MP3Frame) int {
	if frame.MPEGLayer != mp3lib.MPEGLayerIII {
		return 0
	}
	mono := frame.ChannelMode == mp3lib.Mono
	switch {
	case frame.MPEGVersion == mp3lib.MPEGVersion1 && mono:
		return 17
	case frame.MPEGVersion == mp3lib.MPEGVersion1:
		return 32
	case mono:
		return 9
	default:
		return 17
	}
}

// vbrFrameCount returns the frame count stored in a Xing, Info or VBRI
// header frame.
func vbrFrameCount(frame *mp3lib.MP3Frame) (uint32, bool) {
	raw := frame.RawBytes

	if mp3lib.IsXingHeader(frame) {
		offset := frameHeaderSize + sideInfoSize(frame) + xingFlagsOffset
		if len(raw) < offset+8 {
			return 0, false
		}
		if binary.BigEndian.Uint32(raw[offset:])&xingFramesFlag == 0 {
			return 0, false
		}
		return binary.BigEndian.Uint32(raw[offset+4:]), true
	}

	if mp3lib.IsVbriHeader(frame) && len(raw) >= vbriFramesOffset+4 {
		return binary.BigEndian.Uint32(raw[vbriFramesOffset:]), true
	}

	return 0, false
}

func frameSeconds(frame *mp3lib.MP3Frame) float64 {
	if frame.SamplingRate == 0 {
		return 0
	}
	return float64(frame.SampleCount) / float64(frame.SamplingRate)
}

// Duration returns the playing time of the MPEG audio stream in r.
//
// A Xing, Info or VBRI header with a frame count on the first frame is
// trusted. Otherwise every frame is visited and their durations summed.
func Duration(r io.Reader) (float64, error) {
	first := mp3lib.NextFrame(r)
	if first == nil {
		return 0, errNoFrames
	}

	if n, ok := vbrFrameCount(first); ok {
		return float64(n) * frameSeconds(first), nil
	}

	total := 0.0
	// A header frame without a count carries no audio.
	if !mp3lib.IsXingHeader(first) && !mp3lib.IsVbriHeader(first) {
		total = frameSeconds(first)
	}
	for frame := mp3lib.NextFrame(r); frame != nil; frame = mp3lib.NextFrame(r) {
		total += frameSeconds(frame)
	}
	return total, nil
}
