package sim

import (
	"errors"

	"github.com/FastLED/clockless/core"
)

var ErrCaptureBusy = errors.New("sim: capture channel already armed")

// Capture models the receive channel watching the wire. On each poll
// it measures any newly transmitted symbols into the session FIFO, and
// reports completion once a reset gap goes by or the configured symbol
// budget is exhausted.
type Capture struct {
	wire  *Wire
	fifo  *core.SymbolFIFO
	cfg   core.CaptureConfig
	armed bool
	mark  int // wire position when armed
	taken int // symbols pushed so far
	done  bool
}

// NewCapture returns a capture channel watching wire.
func NewCapture(wire *Wire) *Capture {
	return &Capture{wire: wire}
}

// Arm begins capturing into fifo from the current wire position.
func (c *Capture) Arm(cfg core.CaptureConfig, fifo *core.SymbolFIFO) error {
	if c.armed {
		return ErrCaptureBusy
	}
	c.cfg = cfg
	c.fifo = fifo
	c.mark = c.wire.length()
	c.taken = 0
	c.done = false
	c.armed = true
	return nil
}

// Completed drains newly observed symbols into the FIFO and reports
// whether the capture has terminated.
func (c *Capture) Completed() bool {
	if !c.armed {
		return c.done
	}
	syms := c.wire.snapshot(c.mark + c.taken)
	for _, s := range syms {
		if c.cfg.MaxSymbols > 0 && c.taken >= c.cfg.MaxSymbols {
			c.done = true
			break
		}
		if !c.fifo.Push(s) {
			c.done = true
			break
		}
		c.taken++
		if s.IsReset(c.wire.Profile) {
			c.done = true
			break
		}
	}
	return c.done
}

// Disarm stops capturing. Idempotent.
func (c *Capture) Disarm() {
	c.armed = false
}
