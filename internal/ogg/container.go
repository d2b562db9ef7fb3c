// Package ogg extracts tags from Ogg Vorbis files.
package ogg

import (
	"bytes"
	"fmt"

	"github.com/simonhull/audiotag/internal/binary"
)

const (
	pageMagic      = "OggS"
	pageHeaderSize = 27

	// Header type flags
	flagContinued = 0x01
	flagBOS       = 0x02
	flagEOS       = 0x04

	// Granule position of a page on which no packet ends.
	noGranule = -1

	// Search window for the final page.
	tailSearchSize = 65536
)

// Page represents an Ogg page.
//
// An Ogg page is the fundamental unit of the Ogg container format.
// Each page contains a header, a lacing table and payload data.
type Page struct {
	HeaderType      byte   // Bit flags: 0x01=continued, 0x02=BOS, 0x04=EOS
	GranulePosition int64  // Position in samples
	SerialNumber    uint32 // Logical bitstream identifier
	SequenceNumber  uint32 // Page sequence number
	Segments        []byte // Lacing values, one per segment
	Data            []byte // Page payload (one or more packets)
}

// readPage reads an Ogg page at the given offset.
//
// Returns the page, next offset, and any error encountered.
func readPage(sr *binary.SafeReader, offset int64) (*Page, int64, error) {
	magic := make([]byte, 4)
	if err := sr.ReadAt(magic, offset, "Ogg magic"); err != nil {
		return nil, 0, err
	}
	if string(magic) != pageMagic {
		return nil, 0, fmt.Errorf("invalid Ogg page at offset %d", offset)
	}

	// Stream structure version must be 0
	version, err := binary.Read[uint8](sr, offset+4, "version")
	if err != nil {
		return nil, 0, err
	}
	if version != 0 {
		return nil, 0, fmt.Errorf("unsupported Ogg version: %d", version)
	}

	headerType, err := binary.Read[uint8](sr, offset+5, "header type")
	if err != nil {
		return nil, 0, err
	}

	granule, err := binary.ReadLE[uint64](sr, offset+6, "granule position")
	if err != nil {
		return nil, 0, err
	}

	serial, err := binary.ReadLE[uint32](sr, offset+14, "serial number")
	if err != nil {
		return nil, 0, err
	}

	sequence, err := binary.ReadLE[uint32](sr, offset+18, "sequence number")
	if err != nil {
		return nil, 0, err
	}

	segmentCount, err := binary.Read[uint8](sr, offset+26, "segment count")
	if err != nil {
		return nil, 0, err
	}

	// Each lacing value is the size of a segment, 0-255
	segments := make([]byte, segmentCount)
	if err := sr.ReadAt(segments, offset+pageHeaderSize, "segment table"); err != nil {
		return nil, 0, err
	}

	dataSize := 0
	for _, seg := range segments {
		dataSize += int(seg)
	}

	data := make([]byte, dataSize)
	dataOffset := offset + pageHeaderSize + int64(segmentCount)
	if err := sr.ReadAt(data, dataOffset, "page data"); err != nil {
		return nil, 0, err
	}

	page := &Page{
		HeaderType:      headerType,
		GranulePosition: int64(granule),
		SerialNumber:    serial,
		SequenceNumber:  sequence,
		Segments:        segments,
		Data:            data,
	}

	return page, dataOffset + int64(dataSize), nil
}

// packetReader reassembles the packets of the first logical stream in a
// file. Pages of other streams are skipped.
//
// A packet ends at the first segment shorter than 255 bytes, so packets may
// span pages and a page may hold several packets.
type packetReader struct {
	sr      *binary.SafeReader
	offset  int64
	serial  uint32
	started bool
	partial []byte
	queue   [][]byte
}

func newPacketReader(sr *binary.SafeReader) *packetReader {
	return &packetReader{sr: sr}
}

// next returns the next complete packet.
func (p *packetReader) next() ([]byte, error) {
	for len(p.queue) == 0 {
		if p.offset >= p.sr.Size() {
			return nil, fmt.Errorf("end of stream after %d bytes", p.offset)
		}
		page, next, err := readPage(p.sr, p.offset)
		if err != nil {
			return nil, err
		}
		p.offset = next

		if !p.started {
			if page.HeaderType&flagBOS == 0 {
				return nil, fmt.Errorf("first page lacks beginning-of-stream flag")
			}
			p.serial = page.SerialNumber
			p.started = true
		} else if page.SerialNumber != p.serial {
			continue
		}
		if page.HeaderType&flagContinued == 0 {
			p.partial = nil
		}
		p.split(page)
	}

	packet := p.queue[0]
	p.queue = p.queue[1:]
	return packet, nil
}

// split appends the segments of page to the packet in progress, queueing
// every packet that ends on this page.
func (p *packetReader) split(page *Page) {
	pos := 0
	for _, lacing := range page.Segments {
		n := int(lacing)
		p.partial = append(p.partial, page.Data[pos:pos+n]...)
		pos += n
		if lacing < 255 {
			p.queue = append(p.queue, p.partial)
			p.partial = nil
		}
	}
}

// findLastGranulePosition searches backwards from the end of file for the
// last page of the given stream that carries a granule position.
//
// This is used to calculate the duration of the audio stream.
func findLastGranulePosition(sr *binary.SafeReader, serial uint32) (int64, error) {
	fileSize := sr.Size()
	searchStart := max(fileSize-tailSearchSize, 0)

	buf := make([]byte, fileSize-searchStart)
	if err := sr.ReadAt(buf, searchStart, "search region"); err != nil {
		return 0, err
	}

	magic := []byte(pageMagic)
	for end := len(buf); ; {
		i := bytes.LastIndex(buf[:end], magic)
		if i < 0 {
			break
		}
		end = i + len(magic) - 1

		page, _, err := readPage(sr, searchStart+int64(i))
		if err != nil || page.SerialNumber != serial || page.GranulePosition <= noGranule {
			continue
		}
		return page.GranulePosition, nil
	}

	return 0, fmt.Errorf("could not find last Ogg page")
}
