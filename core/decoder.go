// Pulse-to-byte decoder: reconstructs a byte buffer from captured
// (high, low) timing symbols. Classification is by the midpoint
// threshold between the two legal high times, with an outer ambiguity
// window so garbage timing is reported instead of silently coerced.
package core

import (
	"errors"
	"fmt"
)

var ErrAmbiguousSymbol = errors.New("clockless: symbol outside both timing windows")

// Symbol is one captured bit: measured high and low durations in
// nanoseconds.
type Symbol struct {
	HighNS uint32
	LowNS  uint32
}

// IsReset reports whether the symbol's low phase is long enough to
// terminate a frame under the given profile.
func (s Symbol) IsReset(prof TimingProfile) bool {
	return s.LowNS >= prof.ResetNanos()
}

// decodeWindow is the tolerated deviation of a captured high phase
// from its nominal duration, as a fraction of T2 (the distance between
// the two nominal high times). Beyond this the symbol is ambiguous.
// Half of T2 on each side means the two windows exactly tile the span
// between the nominal values; anything outside [T1-T2/2, T1+T2+T2/2]
// is rejected.
func decodeWindow(prof TimingProfile) (lo, hi uint32) {
	half := prof.T2 / 2
	lo = 0
	if prof.T1 > half {
		lo = prof.T1 - half
	}
	hi = prof.T1 + prof.T2 + half
	return lo, hi
}

// Decode classifies symbols against prof and packs the resulting bits
// into out, most significant bit first. Decoding stops at the first
// reset gap or when out is full, whichever comes first. The return
// count is the number of complete bytes written; running out of
// symbols mid-byte is a partial decode, reported through the count
// rather than an error. A symbol whose high phase lies outside both
// timing windows aborts the decode with ErrAmbiguousSymbol.
func Decode(out []byte, syms []Symbol, prof TimingProfile) (int, error) {
	if err := prof.Validate(); err != nil {
		return 0, err
	}
	threshold := prof.Threshold()
	lo, hi := decodeWindow(prof)

	n := 0
	var cur byte
	bits := 0
	for i, s := range syms {
		if n >= len(out) {
			break
		}
		if s.HighNS < lo || s.HighNS > hi {
			return n, fmt.Errorf("%w (symbol %d: high=%dns, window %d..%dns)",
				ErrAmbiguousSymbol, i, s.HighNS, lo, hi)
		}
		cur <<= 1
		if s.HighNS > threshold {
			cur |= 1
		}
		bits++
		if bits == 8 {
			out[n] = cur
			n++
			cur = 0
			bits = 0
		}
		if s.IsReset(prof) {
			break
		}
	}
	return n, nil
}
