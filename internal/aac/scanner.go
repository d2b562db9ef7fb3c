// Package aac recovers the duration of raw AAC streams.
//
// A raw stream is either ADTS, where every frame carries its own sync word
// and length, or ADIF, a single header followed by unframed data. ADTS
// durations come from counting frames; ADIF durations from the file size
// and the bitrate in the header.
package aac

import (
	"bytes"
	"errors"
	"io"
)

// bufferSize holds several maximal ADTS frames.
const bufferSize = 4 * (adtsMaxFrameLength + 1)

// Trailing metadata blocks that may follow the last frame.
var trailingTags = [][]byte{
	[]byte("TAG"),
	[]byte("APETAGEX"),
	[]byte("LYRICSBEGIN"),
}

// scanner is a fixed-size window sliding forward over a stream.
//
// buf[:buffered] holds the bytes read so far. The first pending of them
// have been consumed and are dropped by the next refill.
type scanner struct {
	r        io.Reader
	buf      []byte
	buffered int
	pending  int
	offset   int64 // stream offset of buf[0]
	eof      bool
}

func newScanner(r io.Reader, offset int64, size int) *scanner {
	return &scanner{
		r:      r,
		buf:    make([]byte, size),
		offset: offset,
	}
}

// window returns the unconsumed bytes.
func (s *scanner) window() []byte {
	return s.buf[s.pending:s.buffered]
}

// available returns the number of unconsumed bytes.
func (s *scanner) available() int {
	return s.buffered - s.pending
}

// consume marks n bytes at the head of the window as read.
func (s *scanner) consume(n int) {
	if n > s.available() {
		n = s.available()
	}
	s.pending += n
}

// refill drops the consumed bytes, tops the window up from the stream and
// empties it when a trailing tag starts at its head. A short read marks the
// end of the stream; read errors are treated the same way and returned.
func (s *scanner) refill() error {
	if s.pending > 0 {
		copy(s.buf, s.buf[s.pending:s.buffered])
		s.buffered -= s.pending
		s.offset += int64(s.pending)
		s.pending = 0
	}

	var err error
	if !s.eof && s.buffered < len(s.buf) {
		var n int
		n, err = io.ReadFull(s.r, s.buf[s.buffered:])
		s.buffered += n
		if err != nil {
			s.eof = true
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = nil
			}
		}
	}

	if startsWithTrailingTag(s.buf[:s.buffered]) {
		s.buffered = 0
	}
	return err
}

func startsWithTrailingTag(b []byte) bool {
	for _, sig := range trailingTags {
		if bytes.HasPrefix(b, sig) {
			return true
		}
	}
	return false
}
