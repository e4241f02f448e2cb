package sim

import (
	"errors"

	"github.com/FastLED/clockless/core"
)

var ErrPinNotConfigured = errors.New("sim: pin not configured")

// EdgeRecorder is a GPIO driver that timestamps level changes against
// a virtual clock and folds them into (high, low) symbols, so the
// bit-bang encoder can be validated on a host with no hardware at all.
type EdgeRecorder struct {
	clk  *Clock
	pins map[core.GPIOPin]*pinState
}

type pinState struct {
	level    bool
	lastEdge uint32 // cycle of the most recent edge
	highDur  uint32 // pending high duration awaiting its low phase
	haveHigh bool
	syms     []core.Symbol
}

// NewEdgeRecorder returns a recorder timing edges with clk.
func NewEdgeRecorder(clk *Clock) *EdgeRecorder {
	return &EdgeRecorder{
		clk:  clk,
		pins: make(map[core.GPIOPin]*pinState),
	}
}

func (r *EdgeRecorder) ConfigureOutput(pin core.GPIOPin) error {
	r.pins[pin] = &pinState{lastEdge: r.clk.Cycles()}
	return nil
}

func (r *EdgeRecorder) ConfigureInput(pin core.GPIOPin) error {
	return r.ConfigureOutput(pin)
}

func (r *EdgeRecorder) SetPin(pin core.GPIOPin, value bool) error {
	ps, ok := r.pins[pin]
	if !ok {
		return ErrPinNotConfigured
	}
	if value == ps.level {
		return nil
	}
	now := r.clk.Cycles()
	dur := core.NanosFromCycles(now-ps.lastEdge, r.clk.Hz)
	if ps.level {
		// Falling edge: the high phase just ended.
		ps.highDur = dur
		ps.haveHigh = true
	} else if ps.haveHigh {
		// Rising edge: the low phase completes a symbol.
		ps.syms = append(ps.syms, core.Symbol{HighNS: ps.highDur, LowNS: dur})
		ps.haveHigh = false
	}
	ps.level = value
	ps.lastEdge = now
	return nil
}

func (r *EdgeRecorder) GetPin(pin core.GPIOPin) (bool, error) {
	ps, ok := r.pins[pin]
	if !ok {
		return false, ErrPinNotConfigured
	}
	return ps.level, nil
}

// Flush closes out the final symbol using the time elapsed since the
// last edge (the reset gap the encoder holds after the frame) and
// returns everything recorded on the pin.
func (r *EdgeRecorder) Flush(pin core.GPIOPin) []core.Symbol {
	ps, ok := r.pins[pin]
	if !ok {
		return nil
	}
	if ps.haveHigh && !ps.level {
		tail := core.NanosFromCycles(r.clk.Cycles()-ps.lastEdge, r.clk.Hz)
		ps.syms = append(ps.syms, core.Symbol{HighNS: ps.highDur, LowNS: tail})
		ps.haveHigh = false
	}
	out := ps.syms
	ps.syms = nil
	return out
}
