package core

import "testing"

func TestInterleaveRoundTrip(t *testing.T) {
	lanes := [][]byte{
		{0xFF, 0x00, 0xA5},
		{0x00, 0xFF, 0x5A},
		{0x12, 0x34, 0x56},
	}
	words := make([]uint32, InterleavedWords(3))
	n, err := InterleaveLanes(words, lanes)
	if err != nil {
		t.Fatalf("InterleaveLanes failed: %v", err)
	}
	if n != 24 {
		t.Fatalf("interleaved %d words, want 24", n)
	}

	for lane := range lanes {
		out := make([]byte, 3)
		got := DeinterleaveLane(out, words[:n], lane)
		if got != 3 {
			t.Fatalf("lane %d: deinterleaved %d bytes, want 3", lane, got)
		}
		for i := range out {
			if out[i] != lanes[lane][i] {
				t.Errorf("lane %d byte %d: 0x%02X, want 0x%02X",
					lane, i, out[i], lanes[lane][i])
			}
		}
	}
}

func TestInterleaveFirstWordIsMSB(t *testing.T) {
	// Word 0 carries every lane's most significant bit of byte 0.
	lanes := [][]byte{{0x80}, {0x00}, {0x80}}
	words := make([]uint32, 8)
	if _, err := InterleaveLanes(words, lanes); err != nil {
		t.Fatalf("InterleaveLanes failed: %v", err)
	}
	if words[0] != 0b101 {
		t.Errorf("word 0 = %#b, want 0b101", words[0])
	}
	if words[1] != 0 {
		t.Errorf("word 1 = %#b, want 0", words[1])
	}
}

func TestInterleaveLengthMismatch(t *testing.T) {
	words := make([]uint32, 16)
	_, err := InterleaveLanes(words, [][]byte{{1, 2}, {1}})
	if err != ErrLaneMismatch {
		t.Errorf("expected ErrLaneMismatch, got %v", err)
	}
}
