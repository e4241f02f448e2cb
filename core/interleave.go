package core

import "errors"

var ErrLaneMismatch = errors.New("clockless: lanes must share one byte length for interleave")

// Bit-level lane interleave. Transfer units that drive several strips
// through one physical transfer width take one word per bit period,
// where bit j of the word is lane j's data bit for that period. Lane 0
// occupies bit 0 and is the only lane assumed independently observable
// for loopback validation.

// InterleavedWords returns the number of words InterleaveLanes emits
// for lanes of byteLen bytes: one word per bit period.
func InterleavedWords(byteLen int) int {
	return byteLen * 8
}

// InterleaveLanes packs up to 32 equal-length lanes into dst, one
// uint32 per bit period, most significant bit of each byte first.
// dst must hold InterleavedWords(len(lane)) words.
func InterleaveLanes(dst []uint32, lanes [][]byte) (int, error) {
	if len(lanes) == 0 {
		return 0, nil
	}
	byteLen := len(lanes[0])
	for _, l := range lanes[1:] {
		if len(l) != byteLen {
			return 0, ErrLaneMismatch
		}
	}
	n := InterleavedWords(byteLen)
	if len(dst) < n {
		return 0, ErrPulseOverflow
	}
	for i := 0; i < byteLen; i++ {
		for bit := 7; bit >= 0; bit-- {
			var w uint32
			for j, l := range lanes {
				if l[i]&(1<<uint(bit)) != 0 {
					w |= 1 << uint(j)
				}
			}
			dst[i*8+(7-bit)] = w
		}
	}
	return n, nil
}

// DeinterleaveLane extracts one lane's bytes back out of an
// interleaved word stream. Used to recover lane 0 for validation.
func DeinterleaveLane(dst []byte, words []uint32, lane int) int {
	n := len(words) / 8
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		var b byte
		for k := 0; k < 8; k++ {
			b <<= 1
			if words[i*8+k]&(1<<uint(lane)) != 0 {
				b |= 1
			}
		}
		dst[i] = b
	}
	return n
}
