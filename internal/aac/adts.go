package aac

import (
	"github.com/simonhull/audiotag/internal/binary"
)

// ADTS fixed and variable header fields, as bit offsets from the start of
// the frame.
const (
	adtsHeaderSize = 7

	adtsSyncOffset = 0
	adtsSyncWidth  = 12
	adtsSyncWord   = 0xFFF

	adtsLayerOffset = 13
	adtsLayerWidth  = 2

	adtsSampleRateOffset = 18
	adtsSampleRateWidth  = 4

	adtsFrameLengthOffset = 30
	adtsFrameLengthWidth  = 13

	adtsMaxFrameLength = 1<<adtsFrameLengthWidth - 1

	samplesPerFrame = 1024
)

// sampleRates is indexed by the 4-bit sampling frequency index. The last
// three entries are reserved and map to 0.
var sampleRates = [16]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350, 0, 0, 0,
}

// SampleRate returns the rate for a sampling frequency index, or 0 when the
// index is reserved.
func SampleRate(index uint32) int {
	if index >= uint32(len(sampleRates)) {
		return 0
	}
	return sampleRates[index]
}

// IsADTS reports whether b starts with an ADTS sync word and layer 0.
func IsADTS(b []byte) bool {
	return len(b) >= 2 &&
		binary.Bits(b, adtsSyncOffset, adtsSyncWidth) == adtsSyncWord &&
		binary.Bits(b, adtsLayerOffset, adtsLayerWidth) == 0
}

// ADTSHeader is the part of an ADTS frame header the scanner uses.
type ADTSHeader struct {
	SampleRateIndex uint32
	FrameLength     int
}

// ParseADTSHeader decodes the header at the start of b. ok is false when b
// is too short or lacks the sync word.
func ParseADTSHeader(b []byte) (h ADTSHeader, ok bool) {
	if len(b) < adtsHeaderSize || !IsADTS(b) {
		return ADTSHeader{}, false
	}
	return ADTSHeader{
		SampleRateIndex: binary.Bits(b, adtsSampleRateOffset, adtsSampleRateWidth),
		FrameLength:     int(binary.Bits(b, adtsFrameLengthOffset, adtsFrameLengthWidth)),
	}, true
}

// ADTSInfo is the result of an ADTS scan.
type ADTSInfo struct {
	Frames     int
	SampleRate int
}

// Duration returns the stream length in seconds. ok is false when the
// sample rate is unknown or no frame was counted.
func (i ADTSInfo) Duration() (seconds float64, ok bool) {
	if i.SampleRate <= 0 || i.Frames == 0 {
		return 0, false
	}
	framesPerSec := float64(i.SampleRate) / samplesPerFrame
	if framesPerSec == 0 {
		return 0, false
	}
	return float64(i.Frames) / framesPerSec, true
}

// scanADTS counts the ADTS frames from the scanner's current position.
//
// The scan stops without error when sync is lost, when fewer than a header's
// worth of bytes remain, at a trailing tag, or at a frame that runs past the
// end of the data. The sample rate is taken from the first frame.
func scanADTS(s *scanner) (ADTSInfo, error) {
	var info ADTSInfo
	for {
		if s.available() < adtsMaxFrameLength {
			if err := s.refill(); err != nil {
				return info, err
			}
		}
		if s.available() < adtsHeaderSize {
			return info, nil
		}

		h, ok := ParseADTSHeader(s.window())
		if !ok {
			return info, nil
		}
		if info.Frames == 0 {
			info.SampleRate = SampleRate(h.SampleRateIndex)
		}
		// A length shorter than the header would never advance.
		if h.FrameLength < adtsHeaderSize || h.FrameLength > s.available() {
			return info, nil
		}

		info.Frames++
		s.consume(h.FrameLength)
	}
}
