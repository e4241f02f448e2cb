package sim

import "github.com/FastLED/clockless/core"

// Clock is a virtual cycle counter for host runs of the bit-bang
// encoder. Time only advances through DelayCycles, so pulse timing is
// exact and deterministic.
type Clock struct {
	Hz     uint32
	cycles uint32

	// OverrunAtCall injects extra cycles once, on the given delay
	// call, to exercise critical-section overrun detection. Negative
	// disables the injection.
	OverrunAtCall   int
	OverrunCycles   uint32
	delayCallsTotal int
}

// NewClock returns a virtual clock at hz.
func NewClock(hz uint32) *Clock {
	return &Clock{Hz: hz, OverrunAtCall: -1}
}

// Install registers the clock's counter and delay with the core hooks.
func (c *Clock) Install() {
	core.SetCycleCounter(c.Cycles)
	core.SetDelayCycles(c.Delay)
}

// Cycles returns the current virtual cycle count.
func (c *Clock) Cycles() uint32 { return c.cycles }

// Delay advances virtual time by n cycles.
func (c *Clock) Delay(n uint32) {
	c.cycles += n
	if c.OverrunAtCall >= 0 && c.delayCallsTotal == c.OverrunAtCall {
		c.cycles += c.OverrunCycles
	}
	c.delayCallsTotal++
}
