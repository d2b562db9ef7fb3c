package id3

import "github.com/simonhull/audiotag/internal/binary"

const (
	headerLen  = 10
	footerFlag = 0x10
)

// HeaderSize returns the number of bytes occupied by an ID3v2 tag at the
// start of b, header and footer included. ok is false when b does not start
// with a tag.
func HeaderSize(b []byte) (size int64, ok bool) {
	if len(b) < headerLen || string(b[:3]) != "ID3" {
		return 0, false
	}
	size = int64(binary.Synchsafe(b[6:10])) + headerLen
	if b[3] >= 4 && b[5]&footerFlag != 0 {
		size += headerLen
	}
	return size, true
}
