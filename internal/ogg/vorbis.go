package ogg

import (
	"encoding/binary"
	"fmt"

	"github.com/simonhull/audiotag/internal/vorbis"
)

const (
	packetIdentification = 0x01
	packetComment        = 0x03

	vorbisMagic      = "vorbis"
	identificationSz = 30
)

// Identification holds the audio properties of a Vorbis stream.
type Identification struct {
	SampleRate int
}

// checkHeader verifies the packet type and "vorbis" magic shared by all
// three Vorbis header packets.
func checkHeader(data []byte, packetType byte) error {
	if len(data) < 7 {
		return fmt.Errorf("header packet too short: %d bytes", len(data))
	}
	if data[0] != packetType {
		return fmt.Errorf("packet type 0x%02x, want 0x%02x", data[0], packetType)
	}
	if string(data[1:7]) != vorbisMagic {
		return fmt.Errorf("invalid vorbis magic: %q", string(data[1:7]))
	}
	return nil
}

// parseIdentification parses the Vorbis identification header (packet type 0x01).
func parseIdentification(data []byte) (Identification, error) {
	if err := checkHeader(data, packetIdentification); err != nil {
		return Identification{}, err
	}
	if len(data) < identificationSz {
		return Identification{}, fmt.Errorf("identification header too short: %d bytes", len(data))
	}

	if v := binary.LittleEndian.Uint32(data[7:11]); v != 0 {
		return Identification{}, fmt.Errorf("unsupported Vorbis version: %d", v)
	}

	id := Identification{
		SampleRate: int(binary.LittleEndian.Uint32(data[12:16])),
	}
	if id.SampleRate == 0 {
		return Identification{}, fmt.Errorf("sample rate is zero")
	}
	return id, nil
}

// parseComments parses the Vorbis comment header (packet type 0x03). A
// truncated comment list yields the comments read before the damage along
// with the error.
func parseComments(data []byte) (vorbis.Comments, error) {
	if err := checkHeader(data, packetComment); err != nil {
		return nil, err
	}
	return vorbis.ParseCommentBlock(data[7:])
}
