package binary

import "testing"

func TestBits(t *testing.T) {
	// 1111 1111 1111 0001 0101 0000 1000 0000
	header := []byte{0xFF, 0xF1, 0x50, 0x80}

	tests := []struct {
		name   string
		offset uint
		width  uint
		want   uint32
	}{
		{"sync word", 0, 12, 0xFFF},
		{"single bit set", 15, 1, 1},
		{"single bit clear", 12, 1, 0},
		{"byte aligned", 16, 8, 0x50},
		{"straddles bytes", 18, 4, 0x4},
		{"zero width", 3, 0, 0},
		{"past end reads zero", 28, 8, 0},
		{"whole word", 0, 32, 0xFFF15080},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Bits(header, tc.offset, tc.width); got != tc.want {
				t.Errorf("Bits(%d, %d) = 0x%x, want 0x%x", tc.offset, tc.width, got, tc.want)
			}
		})
	}
}

func TestSynchsafe(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint32
	}{
		{[]byte{0x00, 0x00, 0x00, 0x00}, 0},
		{[]byte{0x00, 0x00, 0x00, 0x7F}, 127},
		{[]byte{0x00, 0x00, 0x01, 0x00}, 128},
		{[]byte{0x00, 0x00, 0x02, 0x01}, 257},
		{[]byte{0x7F, 0x7F, 0x7F, 0x7F}, 0x0FFFFFFF},
		// high bits are ignored
		{[]byte{0x80, 0x80, 0x80, 0xFF}, 127},
		{[]byte{0x01, 0x02}, 0},
	}

	for _, tc := range tests {
		if got := Synchsafe(tc.in); got != tc.want {
			t.Errorf("Synchsafe(% x) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
