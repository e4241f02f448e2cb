//go:build rp2040

package main

// Pulse-width capture on a second PIO state machine. The program
// counts cycles while the watched pin is high, pushes the count,
// counts while it is low, pushes again. The Go side pairs the counts
// into symbols and scales them to nanoseconds.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/FastLED/clockless/core"
)

// Loop costs in PIO cycles per counted iteration.
const (
	captureHighCost = 2
	captureLowCost  = 3
)

// buildCaptureProgram emits the pulse-width measurement program.
//
//	    wait 1 pin 0        ; first rising edge starts the capture
//	symloop:
//	    mov x, !null        ; x = 0xFFFFFFFF
//	highloop:
//	    jmp x--, highnext
//	highnext:
//	    jmp pin, highloop   ; 2 cycles per iteration while high
//	    mov isr, !x         ; iteration count
//	    push noblock
//	    mov x, !null
//	lowloop:
//	    jmp x--, lownext
//	lownext:
//	    jmp pin, lowdone    ; next rising edge ends the low phase
//	    jmp lowloop         ; 3 cycles per iteration while low
//	lowdone:
//	    mov isr, !x
//	    push noblock        ; wraps back to symloop
func buildCaptureProgram() []uint16 {
	return []uint16{
		rp2pio.EncodeWaitPin(true, 0),
		rp2pio.EncodeMovNot(rp2pio.SrcDestX, rp2pio.SrcDestNull),
		rp2pio.EncodeJmp(3, rp2pio.JmpXNZeroDec),
		rp2pio.EncodeJmp(2, rp2pio.JmpPinInput),
		rp2pio.EncodeMovNot(rp2pio.SrcDestISR, rp2pio.SrcDestX),
		rp2pio.EncodePush(false, false),
		rp2pio.EncodeMovNot(rp2pio.SrcDestX, rp2pio.SrcDestNull),
		rp2pio.EncodeJmp(8, rp2pio.JmpXNZeroDec),
		rp2pio.EncodeJmp(10, rp2pio.JmpPinInput),
		rp2pio.EncodeJmp(7, rp2pio.JmpAlways),
		rp2pio.EncodeMovNot(rp2pio.SrcDestISR, rp2pio.SrcDestX),
		rp2pio.EncodePush(false, false),
	}
}

const captureWrapTarget = 1 // wrap back to symloop, keep the wait out of the loop

// PIOCapture implements core.CaptureDriver on a PIO state machine.
type PIOCapture struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	offset uint8
	gpio   *RPGPIODriver

	clockHz uint32
	fifo    *core.SymbolFIFO
	cfg     core.CaptureConfig

	armed   bool
	done    bool
	taken   int
	pending uint32 // high count awaiting its low half
	haveHi  bool

	idlePolls int // polls with no new data while a high is pending
}

// NewPIOCapture claims a state machine and loads the measurement
// program. The state machine runs at the full system clock for the
// best resolution; counts are scaled by the loop costs on read-out.
func NewPIOCapture(pio *rp2pio.PIO, gpio *RPGPIODriver) (*PIOCapture, error) {
	sm, err := pio.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	program := buildCaptureProgram()
	offset, err := pio.AddProgram(program, -1)
	if err != nil {
		sm.Unclaim()
		return nil, err
	}
	return &PIOCapture{
		pio:     pio,
		sm:      sm,
		offset:  offset,
		gpio:    gpio,
		clockHz: CPUHz(),
	}, nil
}

// Arm points the state machine at cfg.Pin and starts measuring.
func (c *PIOCapture) Arm(cfg core.CaptureConfig, fifo *core.SymbolFIFO) error {
	if err := c.gpio.ConfigureInput(cfg.Pin); err != nil {
		return err
	}
	pin := machine.Pin(cfg.Pin)

	smCfg := rp2pio.DefaultStateMachineConfig()
	smCfg.SetInPins(pin)
	smCfg.SetJmpPin(pin)
	smCfg.SetFIFOJoin(rp2pio.FifoJoinRx)
	smCfg.SetWrap(c.offset+captureWrapTarget, c.offset+11)
	smCfg.SetClkDivIntFrac(1, 0)

	c.sm.SetEnabled(false)
	c.sm.ClearFIFOs()
	c.sm.Init(c.offset, smCfg)
	c.sm.SetEnabled(true)

	c.cfg = cfg
	c.fifo = fifo
	c.armed = true
	c.done = false
	c.taken = 0
	c.haveHi = false
	c.idlePolls = 0
	return nil
}

// countToNS scales a loop count to nanoseconds.
func (c *PIOCapture) countToNS(count, cost uint32) uint32 {
	return uint32(uint64(count) * uint64(cost) * 1_000_000_000 / uint64(c.clockHz))
}

// idleLimit is how many empty polls with a pending high we treat as
// the line having gone quiet. The PIO never pushes the final low
// because no edge ends it, so the reset gap is synthesized here.
const idleLimit = 64

// Completed drains the RX FIFO, pairing counts into symbols.
func (c *PIOCapture) Completed() bool {
	if !c.armed {
		return c.done
	}
	progressed := false
	for !c.sm.IsRxFIFOEmpty() {
		progressed = true
		count := c.sm.RxGet()
		if !c.haveHi {
			c.pending = count
			c.haveHi = true
			continue
		}
		high := c.countToNS(c.pending, captureHighCost)
		low := c.countToNS(count, captureLowCost)
		c.haveHi = false
		if !c.push(core.Symbol{HighNS: high, LowNS: low}) {
			return c.done
		}
	}

	if progressed {
		c.idlePolls = 0
		return c.done
	}
	if c.haveHi {
		c.idlePolls++
		if c.idlePolls >= idleLimit {
			// Line idle: close the last symbol with a reset-length low.
			high := c.countToNS(c.pending, captureHighCost)
			c.haveHi = false
			c.push(core.Symbol{HighNS: high, LowNS: 0xFFFFFFFF})
			c.done = true
		}
	}
	return c.done
}

func (c *PIOCapture) push(s core.Symbol) bool {
	if c.cfg.MaxSymbols > 0 && c.taken >= c.cfg.MaxSymbols {
		c.done = true
		return false
	}
	if !c.fifo.Push(s) {
		c.done = true
		return false
	}
	c.taken++
	return true
}

// Disarm stops the state machine. Idempotent.
func (c *PIOCapture) Disarm() {
	if !c.armed {
		return
	}
	c.armed = false
	c.sm.SetEnabled(false)
	c.sm.ClearFIFOs()
}
