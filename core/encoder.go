// Bit-pulse encoder: converts a byte buffer into the two-phase
// pulse-width encoding used by WS2812-class chipsets. Bits transmit
// most significant first; a 1 bit holds the line high for T1+T2, a 0
// bit for T1 only, and every bit occupies the same total period.
package core

import (
	"errors"
	"fmt"
)

var (
	ErrPulseOverflow  = errors.New("clockless: pulse buffer too small for frame")
	ErrEncoderOverrun = errors.New("clockless: critical section overrun, frame corrupted")
)

// Pulse is one encoded bit: the number of clock cycles to hold the
// line high followed by the number of cycles to hold it low.
type Pulse struct {
	HighCycles uint32
	LowCycles  uint32
}

// PulseCount returns the number of pulses EncodeFrame emits for a
// frame of n bytes (one pulse per bit).
func PulseCount(n int) int {
	return n * 8
}

// EncodeFrame encodes src into dst as per-bit pulses at the given
// clock frequency. The final pulse's low phase is extended by the
// profile's reset gap so the frame is self-terminating on the wire.
// dst must hold PulseCount(len(src)) pulses; no allocation occurs.
// Returns the number of pulses written.
func EncodeFrame(dst []Pulse, src []byte, prof TimingProfile, hz uint32) (int, error) {
	n, err := EncodeChunk(dst, src, prof, hz)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		dst[n-1].LowCycles += CyclesFromNanos(prof.ResetNanos(), hz)
	}
	return n, nil
}

// EncodeChunk encodes src without the trailing reset gap. Transfer
// units use this per buffer so a multi-buffer transmission carries a
// single reset at the very end, not one per buffer.
func EncodeChunk(dst []Pulse, src []byte, prof TimingProfile, hz uint32) (int, error) {
	if err := prof.Validate(); err != nil {
		return 0, err
	}
	n := PulseCount(len(src))
	if len(dst) < n {
		return 0, ErrPulseOverflow
	}
	high0, high1, period := CycleBudget(prof, hz)
	w := 0
	for _, b := range src {
		for bit := 7; bit >= 0; bit-- {
			high := high0
			if b&(1<<uint(bit)) != 0 {
				high = high1
			}
			dst[w] = Pulse{HighCycles: high, LowCycles: period - high}
			w++
		}
	}
	return w, nil
}

// BitBang drives the pin directly, one interrupt-masked critical
// section per byte. This is the fallback path for targets without a
// hardware transfer unit. The byte run is timed against the cycle
// counter; if emission took longer than the budget plus one bit period
// of slack, the signal is corrupted mid-bit and the whole frame must
// be retried by the caller.
func BitBang(drv GPIODriver, pin GPIOPin, src []byte, prof TimingProfile, hz uint32) error {
	if err := prof.Validate(); err != nil {
		return err
	}
	high0, high1, period := CycleBudget(prof, hz)
	// One bit period of slack per byte-run.
	budget := 8*period + period

	write := pinWrite
	if write == nil {
		write = func(p GPIOPin, v bool) { drv.SetPin(p, v) }
	}

	var cs CriticalSection
	for i, b := range src {
		cs.Enter()
		start := cycleCount()
		for bit := 7; bit >= 0; bit-- {
			high := high0
			if b&(1<<uint(bit)) != 0 {
				high = high1
			}
			write(pin, true)
			delayCycles(high)
			write(pin, false)
			delayCycles(period - high)
		}
		elapsed := cycleCount() - start
		cs.Exit()
		if elapsed > budget {
			return fmt.Errorf("%w (byte %d took %d cycles, budget %d)",
				ErrEncoderOverrun, i, elapsed, budget)
		}
	}
	// Reset gap; interrupts stay enabled, the line only has to stay low.
	delayCycles(CyclesFromNanos(prof.ResetNanos(), hz))
	return nil
}
