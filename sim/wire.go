// Package sim is an in-memory model of the single-wire LED bus. It
// implements the core HAL interfaces so the encoder, scheduler, and
// capture session can be exercised end to end on a host without
// hardware, including the inter-buffer gap behavior that the fill
// planner's record alignment exists to survive.
package sim

import (
	"sync"

	"github.com/FastLED/clockless/core"
)

// Wire accumulates transmitted symbols in nanoseconds. One writer (the
// transfer unit or an edge recorder) and one reader (the capture
// driver) share it; the mutex keeps the host race detector quiet, the
// real bus needs no such thing.
type Wire struct {
	Profile core.TimingProfile
	ClockHz uint32

	// BoundaryGapNS is the idle the hardware inserts between one
	// buffer's last symbol and the next buffer's first, extending the
	// low phase at the split.
	BoundaryGapNS uint32

	// BoundaryJitterNS shaves the high phase of the symbol just before
	// a buffer boundary, clamped at the nominal 0-bit width. This is
	// the mechanism that can flip the LSB of the byte adjacent to the
	// split and nothing else.
	BoundaryJitterNS uint32

	mu   sync.Mutex
	syms []core.Symbol
}

// NewWire returns a wire for the given profile and pulse clock.
func NewWire(prof core.TimingProfile, hz uint32) *Wire {
	return &Wire{Profile: prof, ClockHz: hz}
}

// appendPulses converts encoded pulses to nanosecond symbols on the
// wire.
func (w *Wire) appendPulses(pulses []core.Pulse) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range pulses {
		w.syms = append(w.syms, core.Symbol{
			HighNS: core.NanosFromCycles(p.HighCycles, w.ClockHz),
			LowNS:  core.NanosFromCycles(p.LowCycles, w.ClockHz),
		})
	}
}

// appendSymbols places pre-measured symbols on the wire (edge-recorder
// path).
func (w *Wire) appendSymbols(syms []core.Symbol) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syms = append(w.syms, syms...)
}

// markBoundary applies the configured inter-buffer gap and jitter to
// the last symbol on the wire.
func (w *Wire) markBoundary() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.syms) == 0 {
		return
	}
	last := &w.syms[len(w.syms)-1]
	last.LowNS += w.BoundaryGapNS
	if w.BoundaryJitterNS > 0 {
		shaved := last.HighNS - w.BoundaryJitterNS
		if shaved < w.Profile.T1 || shaved > last.HighNS {
			shaved = w.Profile.T1
		}
		last.HighNS = shaved
	}
}

// terminate extends the final symbol's low phase with the reset gap,
// ending the frame.
func (w *Wire) terminate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.syms) == 0 {
		return
	}
	w.syms[len(w.syms)-1].LowNS += w.Profile.ResetNanos()
}

// snapshot returns the symbols transmitted since position from.
func (w *Wire) snapshot(from int) []core.Symbol {
	w.mu.Lock()
	defer w.mu.Unlock()
	if from > len(w.syms) {
		from = len(w.syms)
	}
	out := make([]core.Symbol, len(w.syms)-from)
	copy(out, w.syms[from:])
	return out
}

// length returns the number of symbols on the wire.
func (w *Wire) length() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.syms)
}

// Reset clears the wire.
func (w *Wire) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syms = w.syms[:0]
}
