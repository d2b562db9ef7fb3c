package binary

// Bits extracts a big-endian bit field of the given width starting at
// bitOffset, counted from the most significant bit of b[0].
//
// Widths above 32 are truncated to 32. Bits past the end of b read as zero,
// so callers must check the header length before trusting the result.
//
// Example, the 13-bit ADTS frame length:
//
//	length := binary.Bits(header, 30, 13)
func Bits(b []byte, bitOffset, width uint) uint32 {
	if width > 32 {
		width = 32
	}
	var v uint32
	for i := uint(0); i < width; i++ {
		pos := bitOffset + i
		idx := pos / 8
		var bit uint32
		if idx < uint(len(b)) {
			bit = uint32(b[idx]>>(7-pos%8)) & 1
		}
		v = v<<1 | bit
	}
	return v
}

// Synchsafe decodes a 28-bit synchsafe integer: four bytes that each carry
// seven payload bits with the high bit clear.
func Synchsafe(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}
