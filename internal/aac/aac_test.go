package aac

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/simonhull/audiotag/internal/types"
)

// adtsFrame builds an LC stereo ADTS frame of the given total length.
func adtsFrame(sampleRateIndex byte, length int) []byte {
	f := make([]byte, length)
	f[0] = 0xFF
	f[1] = 0xF1 // MPEG-4, layer 0, no CRC
	f[2] = 1<<6 | sampleRateIndex<<2
	f[3] = 0x40 | byte(length>>11)&0x03
	f[4] = byte(length >> 3)
	f[5] = byte(length&0x07)<<5 | 0x1F
	f[6] = 0xFC
	return f
}

func adtsStream(sampleRateIndex byte, frames, length int) []byte {
	var buf bytes.Buffer
	for range frames {
		buf.Write(adtsFrame(sampleRateIndex, length))
	}
	return buf.Bytes()
}

// putBits writes the low width bits of v at bitOffset, MSB first.
func putBits(b []byte, bitOffset, width uint, v uint32) {
	for i := uint(0); i < width; i++ {
		bit := (v >> (width - 1 - i)) & 1
		pos := bitOffset + i
		if bit == 1 {
			b[pos/8] |= 0x80 >> (pos % 8)
		}
	}
}

func adifHeader(copyright bool, bitrate uint32) []byte {
	h := make([]byte, 32)
	copy(h, "ADIF")
	offset := uint(33)
	if copyright {
		putBits(h, 32, 1, 1)
		for i := 5; i < 13; i++ {
			h[i] = 0xAA
		}
		offset += 72
	}
	offset += 3
	putBits(h, offset, 23, bitrate)
	return h
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseADTSHeader(t *testing.T) {
	h, ok := ParseADTSHeader(adtsFrame(4, 371))
	if !ok {
		t.Fatal("expected valid header")
	}
	if h.SampleRateIndex != 4 {
		t.Errorf("SampleRateIndex = %d, want 4", h.SampleRateIndex)
	}
	if h.FrameLength != 371 {
		t.Errorf("FrameLength = %d, want 371", h.FrameLength)
	}

	if _, ok := ParseADTSHeader([]byte{0xFF, 0xF1, 0x50}); ok {
		t.Error("short header accepted")
	}
	if _, ok := ParseADTSHeader([]byte{0xFF, 0xE1, 0, 0, 0, 0, 0}); ok {
		t.Error("bad sync accepted")
	}
	// Layer bits must be zero; 0xF6 mask in the sync check.
	if _, ok := ParseADTSHeader([]byte{0xFF, 0xF3, 0, 0, 0, 0, 0}); ok {
		t.Error("non-zero layer accepted")
	}
}

func TestSampleRate(t *testing.T) {
	tests := []struct {
		index uint32
		want  int
	}{
		{0, 96000},
		{3, 48000},
		{4, 44100},
		{11, 8000},
		{12, 7350},
		{13, 0},
		{15, 0},
		{16, 0},
	}
	for _, tt := range tests {
		if got := SampleRate(tt.index); got != tt.want {
			t.Errorf("SampleRate(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestScanADTS(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantFrames int
		wantRate   int
	}{
		{
			name:       "whole frames",
			data:       adtsStream(4, 10, 200),
			wantFrames: 10,
			wantRate:   44100,
		},
		{
			name:       "spans several buffers",
			data:       adtsStream(3, 300, 1000),
			wantFrames: 300,
			wantRate:   48000,
		},
		{
			name:       "truncated last frame",
			data:       append(adtsStream(4, 3, 200), adtsFrame(4, 300)[:100]...),
			wantFrames: 3,
			wantRate:   44100,
		},
		{
			name:       "lost sync",
			data:       append(adtsStream(4, 2, 200), make([]byte, 64)...),
			wantFrames: 2,
			wantRate:   44100,
		},
		{
			name:       "trailing ID3v1",
			data:       append(adtsStream(4, 5, 200), append([]byte("TAG"), make([]byte, 125)...)...),
			wantFrames: 5,
			wantRate:   44100,
		},
		{
			name:       "trailing APE tag",
			data:       append(adtsStream(4, 5, 200), []byte("APETAGEX-and-some-more")...),
			wantFrames: 5,
			wantRate:   44100,
		},
		{
			name:       "fewer than seven bytes left",
			data:       append(adtsStream(4, 4, 200), 0xFF, 0xF1, 0x50),
			wantFrames: 4,
			wantRate:   44100,
		},
		{
			name:       "reserved sample rate index",
			data:       adtsStream(13, 4, 200),
			wantFrames: 4,
			wantRate:   0,
		},
		{
			name:       "rate from first frame only",
			data:       append(adtsStream(4, 1, 200), adtsStream(3, 2, 200)...),
			wantFrames: 3,
			wantRate:   44100,
		},
		{
			name:       "empty",
			data:       nil,
			wantFrames: 0,
			wantRate:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := scanADTS(newScanner(bytes.NewReader(tt.data), 0, bufferSize))
			if err != nil {
				t.Fatalf("scanADTS: %v", err)
			}
			if info.Frames != tt.wantFrames {
				t.Errorf("Frames = %d, want %d", info.Frames, tt.wantFrames)
			}
			if info.SampleRate != tt.wantRate {
				t.Errorf("SampleRate = %d, want %d", info.SampleRate, tt.wantRate)
			}
		})
	}
}

func TestScanADTSZeroLengthFrame(t *testing.T) {
	// A header claiming length 0 must not loop forever.
	data := append(adtsStream(4, 2, 200), adtsFrame(4, 7)...)
	data[len(data)-7+3] &^= 0x03
	data[len(data)-7+4] = 0
	data[len(data)-7+5] &= 0x1F

	info, err := scanADTS(newScanner(bytes.NewReader(data), 0, bufferSize))
	if err != nil {
		t.Fatal(err)
	}
	if info.Frames != 2 {
		t.Errorf("Frames = %d, want 2", info.Frames)
	}
}

func TestADTSInfoDuration(t *testing.T) {
	info := ADTSInfo{Frames: 78, SampleRate: 8000}
	d, ok := info.Duration()
	if !ok {
		t.Fatal("expected known duration")
	}
	want := 78 * 1024.0 / 8000
	if math.Abs(d-want) > 1e-9 {
		t.Errorf("Duration = %v, want %v", d, want)
	}
	if got := types.Seconds(d); got != 10 {
		t.Errorf("Seconds = %d, want 10", got)
	}

	if _, ok := (ADTSInfo{Frames: 10}).Duration(); ok {
		t.Error("zero sample rate gave a duration")
	}
	if _, ok := (ADTSInfo{SampleRate: 44100}).Duration(); ok {
		t.Error("zero frames gave a duration")
	}
}

func TestScannerRefillTrailingTag(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		consume   int
		wantEmpty bool
	}{
		{"ID3v1 at head", "abcdTAGxyz", 4, true},
		{"APE at head", "abAPETAGEX0000", 2, true},
		{"Lyrics3 at head", "aLYRICSBEGINfoo", 1, true},
		{"partial signature", "abcdTA", 4, false},
		{"signature later", "abcdxTAG", 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScanner(bytes.NewReader([]byte(tt.data)), 0, 64)
			if err := s.refill(); err != nil {
				t.Fatal(err)
			}
			s.consume(tt.consume)
			if err := s.refill(); err != nil {
				t.Fatal(err)
			}
			if got := s.available() == 0; got != tt.wantEmpty {
				t.Errorf("empty = %v, want %v (window %q)", got, tt.wantEmpty, s.window())
			}
			if s.offset != int64(tt.consume) {
				t.Errorf("offset = %d, want %d", s.offset, tt.consume)
			}
		})
	}
}

func TestScannerSlides(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 10)
	s := newScanner(bytes.NewReader(data), 0, 16)
	var seen []byte
	for {
		if err := s.refill(); err != nil {
			t.Fatal(err)
		}
		if s.available() == 0 {
			break
		}
		n := min(5, s.available())
		seen = append(seen, s.window()[:n]...)
		s.consume(n)
	}
	if !bytes.Equal(seen, data) {
		t.Errorf("scanner lost bytes: got %d, want %d", len(seen), len(data))
	}
}

func TestParseADIF(t *testing.T) {
	tests := []struct {
		name      string
		header    []byte
		size      int64
		wantRate  int
		wantDur   float64
		wantKnown bool
	}{
		{
			name:      "no copyright id",
			header:    adifHeader(false, 128000),
			size:      16000,
			wantRate:  128000,
			wantDur:   1,
			wantKnown: true,
		},
		{
			name:      "copyright id skipped",
			header:    adifHeader(true, 64000),
			size:      80000,
			wantRate:  64000,
			wantDur:   10,
			wantKnown: true,
		},
		{
			name:      "largest bitrate",
			header:    adifHeader(false, 1<<23-1),
			size:      1<<23 - 1,
			wantRate:  1<<23 - 1,
			wantDur:   8,
			wantKnown: true,
		},
		{
			name:      "zero size",
			header:    adifHeader(false, 128000),
			size:      0,
			wantRate:  128000,
			wantDur:   0,
			wantKnown: true,
		},
		{
			name:      "zero bitrate",
			header:    adifHeader(false, 0),
			size:      16000,
			wantRate:  0,
			wantKnown: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseADIF(tt.header, tt.size)
			if err != nil {
				t.Fatalf("ParseADIF: %v", err)
			}
			if info.Bitrate != tt.wantRate {
				t.Errorf("Bitrate = %d, want %d", info.Bitrate, tt.wantRate)
			}
			d, ok := info.Duration()
			if ok != tt.wantKnown {
				t.Fatalf("known = %v, want %v", ok, tt.wantKnown)
			}
			if ok && math.Abs(d-tt.wantDur) > 1e-9 {
				t.Errorf("Duration = %v, want %v", d, tt.wantDur)
			}
		})
	}
}

func TestParseADIFErrors(t *testing.T) {
	if _, err := ParseADIF([]byte("ADTS0000"), 10); err == nil {
		t.Error("expected error for missing magic")
	}
	if _, err := ParseADIF(adifHeader(true, 1)[:8], 10); err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestDuration(t *testing.T) {
	id3Tag := func(body int) []byte {
		h := []byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0, 0}
		h[8] = byte(body >> 7 & 0x7F)
		h[9] = byte(body & 0x7F)
		return append(h, make([]byte, body)...)
	}

	tests := []struct {
		name    string
		data    []byte
		want    int
		wantErr error
	}{
		{
			name: "ADTS",
			data: adtsStream(11, 78, 200),
			want: 10,
		},
		{
			name: "ADTS after ID3",
			data: append(id3Tag(300), adtsStream(11, 16, 150)...),
			want: 2,
		},
		{
			name: "ADIF",
			data: append(adifHeader(false, 8000), make([]byte, 968)...),
			want: 1,
		},
		{
			name:    "reserved rate",
			data:    adtsStream(14, 10, 200),
			wantErr: types.ErrNoMetadata,
		},
		{
			name:    "ADIF zero bitrate",
			data:    append(adifHeader(false, 0), make([]byte, 100)...),
			wantErr: types.ErrNoMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Duration(bytes.NewReader(tt.data), int64(len(tt.data)))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Duration: %v", err)
			}
			if got := types.Seconds(d); got != tt.want {
				t.Errorf("Duration = %v (%ds), want %ds", d, got, tt.want)
			}
		})
	}
}

func TestDurationNotAAC(t *testing.T) {
	data := []byte("fLaC\x00\x00\x00\x22 this is not aac")
	_, err := Duration(bytes.NewReader(data), int64(len(data)))
	var unsupported *types.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want UnsupportedFormatError", err)
	}
}

type stubReader struct {
	tag   *types.Tag
	calls int
}

func (s *stubReader) ReadTag(string) *types.Tag {
	s.calls++
	return s.tag
}

func TestExtractor(t *testing.T) {
	path := writeFile(t, "song.aac", adtsStream(11, 78, 200))

	fallback := types.New()
	fallback.Set(types.FieldArtist, "Artist")
	fallback.Set(types.FieldTitle, "Title")
	stub := &stubReader{tag: fallback}

	tag, err := (&Extractor{Fallback: stub}).Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if tag.Artist != "Artist" || tag.Title != "Title" {
		t.Errorf("text fields not taken from fallback: %+v", tag)
	}
	if tag.Time != 10 {
		t.Errorf("Time = %d, want 10", tag.Time)
	}
	if fallback.Time != types.UnknownTime {
		t.Error("fallback record was modified")
	}
}

func TestExtractorNoFallback(t *testing.T) {
	path := writeFile(t, "song.aac", adtsStream(11, 78, 200))

	tag, err := (&Extractor{Fallback: &stubReader{}}).Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if tag.HasText() {
		t.Errorf("unexpected text fields: %+v", tag)
	}
	if tag.Time != 10 {
		t.Errorf("Time = %d, want 10", tag.Time)
	}
}

func TestExtractorUnknownDuration(t *testing.T) {
	path := writeFile(t, "song.aac", adtsStream(15, 5, 200))
	stub := &stubReader{tag: types.New()}

	tag, err := (&Extractor{Fallback: stub}).Extract(path)
	if err == nil {
		t.Fatalf("expected error, got %+v", tag)
	}
	if tag != nil {
		t.Errorf("tag = %+v, want nil", tag)
	}
	if stub.calls != 0 {
		t.Error("fallback consulted for a file without duration")
	}
}

func TestExtractorMissingFile(t *testing.T) {
	_, err := (&Extractor{Fallback: &stubReader{}}).Extract(filepath.Join(t.TempDir(), "missing.aac"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}
