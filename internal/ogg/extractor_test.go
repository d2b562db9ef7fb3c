package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	audiobinary "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

type page struct {
	headerType byte
	granule    int64
	serial     uint32
	segments   []byte
	data       []byte
}

// lace returns the segment table for one packet of n bytes.
func lace(n int) []byte {
	var segments []byte
	for n >= 255 {
		segments = append(segments, 255)
		n -= 255
	}
	return append(segments, byte(n))
}

func (p page) bytes(sequence uint32) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("OggS")
	buf.WriteByte(0x00)
	buf.WriteByte(p.headerType)
	binary.Write(buf, binary.LittleEndian, uint64(p.granule))
	binary.Write(buf, binary.LittleEndian, p.serial)
	binary.Write(buf, binary.LittleEndian, sequence)
	binary.Write(buf, binary.LittleEndian, uint32(0)) // checksum, unchecked
	buf.WriteByte(byte(len(p.segments)))
	buf.Write(p.segments)
	buf.Write(p.data)
	return buf.Bytes()
}

func identificationPacket(sampleRate uint32) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(0x01)
	buf.WriteString("vorbis")
	binary.Write(buf, binary.LittleEndian, uint32(0))      // Vorbis version
	buf.WriteByte(2)                                       // Channels
	binary.Write(buf, binary.LittleEndian, sampleRate)     // Sample rate
	binary.Write(buf, binary.LittleEndian, uint32(0))      // Bitrate maximum
	binary.Write(buf, binary.LittleEndian, uint32(128000)) // Bitrate nominal
	binary.Write(buf, binary.LittleEndian, uint32(0))      // Bitrate minimum
	buf.WriteByte(0xB8)                                    // Blocksizes
	buf.WriteByte(0x01)                                    // Framing flag
	return buf.Bytes()
}

func commentPacket(comments ...string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(0x03)
	buf.WriteString("vorbis")
	vendor := "audiotag test"
	binary.Write(buf, binary.LittleEndian, uint32(len(vendor)))
	buf.WriteString(vendor)
	binary.Write(buf, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		binary.Write(buf, binary.LittleEndian, uint32(len(c)))
		buf.WriteString(c)
	}
	buf.WriteByte(0x01) // framing bit
	return buf.Bytes()
}

func setupPacket() []byte {
	return append([]byte{0x05}, []byte("vorbis\x00\x00\x00\x00")...)
}

// createOgg builds a Vorbis stream: identification on the BOS page, the
// comment and setup headers sharing the second page, then audio pages whose
// final granule is lastGranule.
func createOgg(sampleRate uint32, lastGranule int64, comments ...string) []byte {
	const serial = 0x1234

	comment := commentPacket(comments...)
	setup := setupPacket()

	pages := []page{
		{headerType: 0x02, serial: serial, segments: lace(30), data: identificationPacket(sampleRate)},
		{
			serial:   serial,
			segments: append(lace(len(comment)), lace(len(setup))...),
			data:     append(comment, setup...),
		},
		{serial: serial, granule: lastGranule / 2, segments: lace(100), data: make([]byte, 100)},
		{headerType: 0x04, serial: serial, granule: lastGranule, segments: lace(100), data: make([]byte, 100)},
	}

	var out []byte
	for i, p := range pages {
		out = append(out, p.bytes(uint32(i))...)
	}
	return out
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ogg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract(t *testing.T) {
	path := writeFile(t, createOgg(44100, 44100*185,
		"TITLE=Song", "ARTIST=Artist", "ALBUM=Album", "TRACKNUMBER=4"))

	tag, err := Extractor{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := types.Tag{Artist: "Artist", Album: "Album", Title: "Song", Track: "4", Time: 185}
	if *tag != want {
		t.Errorf("got %+v, want %+v", *tag, want)
	}
}

func TestExtractFirstOccurrenceWins(t *testing.T) {
	path := writeFile(t, createOgg(48000, 48000, "ARTIST=Foo", "artist=Bar", "TITLE=Baz"))

	tag, err := Extractor{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if tag.Artist != "Foo" {
		t.Errorf("Artist = %q, want %q", tag.Artist, "Foo")
	}
	if tag.Title != "Baz" {
		t.Errorf("Title = %q, want %q", tag.Title, "Baz")
	}
}

func TestExtractStripsLineTerminators(t *testing.T) {
	path := writeFile(t, createOgg(48000, 48000, "ALBUM=Album\r\n"))

	tag, err := Extractor{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if tag.Album != "Album" {
		t.Errorf("Album = %q, want %q", tag.Album, "Album")
	}
}

func TestExtractNoComments(t *testing.T) {
	path := writeFile(t, createOgg(22050, 22050*3))

	tag, err := Extractor{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if tag.HasText() {
		t.Errorf("unexpected text fields: %+v", tag)
	}
	if tag.Time != 3 {
		t.Errorf("Time = %d, want 3", tag.Time)
	}
}

func TestExtractRounding(t *testing.T) {
	tests := []struct {
		granule int64
		want    int
	}{
		{44100*2 + 22049, 2},
		{44100*2 + 22050, 3},
		{0, 0},
	}
	for _, tt := range tests {
		tag, err := Extractor{}.Extract(writeFile(t, createOgg(44100, tt.granule, "TITLE=x")))
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if tag.Time != tt.want {
			t.Errorf("granule %d: Time = %d, want %d", tt.granule, tag.Time, tt.want)
		}
	}
}

func TestExtractLargeCommentSpansPages(t *testing.T) {
	long := "ALBUM=" + strings.Repeat("a", 700)
	comment := commentPacket("ARTIST=Artist", long)
	laced := lace(len(comment))

	// Split the comment packet across two pages at a segment boundary.
	first, second := laced[:2], laced[2:]
	cut := 2 * 255

	data := bytes.Join([][]byte{
		page{headerType: 0x02, serial: 7, segments: lace(30), data: identificationPacket(8000)}.bytes(0),
		page{serial: 7, segments: first, data: comment[:cut]}.bytes(1),
		page{headerType: 0x01, serial: 7, segments: second, data: comment[cut:]}.bytes(2),
		page{headerType: 0x04, serial: 7, granule: 8000 * 9, segments: lace(10), data: make([]byte, 10)}.bytes(3),
	}, nil)

	tag, err := Extractor{}.Extract(writeFile(t, data))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if tag.Artist != "Artist" || len(tag.Album) != 700 {
		t.Errorf("got artist %q and album of %d bytes", tag.Artist, len(tag.Album))
	}
	if tag.Time != 9 {
		t.Errorf("Time = %d, want 9", tag.Time)
	}
}

func TestExtractUnknownDuration(t *testing.T) {
	// Header pages only, none of which completes an audio packet.
	comment := commentPacket("TITLE=Song")
	data := bytes.Join([][]byte{
		page{headerType: 0x02, serial: 1, granule: -1, segments: lace(30), data: identificationPacket(44100)}.bytes(0),
		page{serial: 1, granule: -1, segments: lace(len(comment)), data: comment}.bytes(1),
	}, nil)

	tag, err := Extractor{}.Extract(writeFile(t, data))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if tag.Title != "Song" {
		t.Errorf("Title = %q", tag.Title)
	}
	if tag.Time != types.UnknownTime {
		t.Errorf("Time = %d, want unknown", tag.Time)
	}
}

func TestExtractAbsent(t *testing.T) {
	opusHead := append([]byte("OpusHead"), make([]byte, 11)...)

	tests := []struct {
		name string
		data []byte
	}{
		{"not ogg", []byte("RIFF\x00\x00\x00\x00WAVEfmt ")},
		{"opus", page{headerType: 0x02, serial: 1, segments: lace(len(opusHead)), data: opusHead}.bytes(0)},
		{"zero sample rate", createOgg(0, 1000, "TITLE=x")},
		{"no comment header", page{headerType: 0x02, serial: 1, segments: lace(30), data: identificationPacket(44100)}.bytes(0)},
		{"missing BOS", page{serial: 1, segments: lace(30), data: identificationPacket(44100)}.bytes(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := Extractor{}.Extract(writeFile(t, tt.data))
			if err == nil {
				t.Fatalf("expected error, got %+v", tag)
			}
			if tag != nil {
				t.Errorf("tag = %+v, want nil", tag)
			}
		})
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := Extractor{}.Extract(filepath.Join(t.TempDir(), "missing.ogg"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestPacketReaderSkipsOtherStreams(t *testing.T) {
	data := bytes.Join([][]byte{
		page{headerType: 0x02, serial: 1, segments: []byte{3}, data: []byte("one")}.bytes(0),
		page{headerType: 0x02, serial: 2, segments: []byte{5}, data: []byte("other")}.bytes(0),
		page{serial: 1, segments: []byte{3, 5}, data: []byte("twothree")}.bytes(1),
	}, nil)
	sr := audiobinary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.ogg")
	pr := newPacketReader(sr)

	var got []string
	for {
		packet, err := pr.next()
		if err != nil {
			break
		}
		got = append(got, string(packet))
	}

	want := []string{"one", "two", "three"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("packets = %q, want %q", got, want)
	}
}

func TestFindLastGranulePosition(t *testing.T) {
	data := bytes.Join([][]byte{
		page{headerType: 0x02, serial: 1, segments: []byte{1}, data: []byte{0}}.bytes(0),
		page{serial: 1, granule: 500, segments: []byte{1}, data: []byte{0}}.bytes(1),
		page{serial: 2, granule: 900, segments: []byte{1}, data: []byte{0}}.bytes(0),
		page{serial: 1, granule: -1, segments: []byte{255}, data: make([]byte, 255)}.bytes(2),
	}, nil)
	sr := audiobinary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.ogg")

	granule, err := findLastGranulePosition(sr, 1)
	if err != nil {
		t.Fatal(err)
	}
	if granule != 500 {
		t.Errorf("granule = %d, want 500", granule)
	}

	if _, err := findLastGranulePosition(sr, 3); err == nil {
		t.Error("expected error for unknown stream")
	}
}

func BenchmarkExtract(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.ogg")
	if err := os.WriteFile(path, createOgg(44100, 44100*240, "TITLE=Bench", "ARTIST=Artist"), 0o644); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := (Extractor{}).Extract(path); err != nil {
			b.Fatal(err)
		}
	}
}
