//go:build rp2040

package main

// Pulse transmit engine using RP2040 PIO + DMA.
// The PIO state machine turns a bit stream into the two-phase pulse
// waveform in hardware; DMA feeds it one ring buffer at a time so the
// CPU only handles per-buffer completion.

import (
	"errors"
	"runtime"

	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/FastLED/clockless/core"
)

var (
	errPulseQueueFull = errors.New("pulse: transfer queue full")
	errPulsePhase     = errors.New("pulse: phase exceeds PIO delay range")
)

// pulsePIOClockHz is the state machine clock. One PIO cycle equals one
// pulse-clock cycle, so phase widths come straight from CycleBudget.
const pulsePIOClockHz = core.DefaultClockHz

const pulseQueueDepth = 4

// enc combines an instruction with its side-set bit and delay field.
// With one side-set bit the delay field is 4 bits wide.
func enc(instr uint16, side uint8, delay uint32) uint16 {
	return instr | uint16(side)<<12 | uint16(delay&0xf)<<8
}

// buildPulseProgram emits the transmit waveform program.
//
//	bitloop:
//	    out x, 1        side 0 [t3-1]   ; low tail of previous bit
//	    jmp !x, do_zero side 1 [t1-1]   ; first high phase, both bits
//	    jmp bitloop     side 1 [t2-1]   ; bit 1: extend the high
//	do_zero:
//	    nop             side 0 [t2-1]   ; bit 0: idle out the window
//
// t1, t2, t3 are the profile's phase widths in PIO cycles.
func buildPulseProgram(t1, t2, t3 uint32) ([]uint16, error) {
	if t1 > 16 || t2 > 16 || t3 > 16 || t1 == 0 || t2 == 0 || t3 == 0 {
		return nil, errPulsePhase
	}
	return []uint16{
		enc(rp2pio.EncodeOut(rp2pio.SrcDestX, 1), 0, t3-1),
		enc(rp2pio.EncodeJmp(3, rp2pio.JmpXZero), 1, t1-1),
		enc(rp2pio.EncodeJmp(0, rp2pio.JmpAlways), 1, t2-1),
		enc(rp2pio.EncodeNOP(), 0, t2-1),
	}, nil
}

type pulseXfer struct {
	slot  int
	words []uint32
}

// PulseUnit implements core.TransferUnit on a PIO state machine.
type PulseUnit struct {
	sm     rp2pio.StateMachine
	dma    dmaChannel
	dreq   uint32
	record int

	// Per-slot word staging. Enqueue repacks the slot's bytes into
	// left-justified words here, one record per autopull.
	staging [][]uint32

	handler func(slot int)

	queue [pulseQueueDepth]pulseXfer
	head  int
	tail  int
	count int

	running bool
	aborted bool
}

// NewPulseUnit claims a state machine on pio, loads the waveform
// program for prof and points DMA at its TX FIFO. record is the frame
// record size in bytes; each record must fit one 32-bit FIFO word.
func NewPulseUnit(pio *rp2pio.PIO, pin machine.Pin, prof core.TimingProfile, record int) (*PulseUnit, error) {
	if record < 1 || record > 4 {
		return nil, core.ErrBadRecordSize
	}

	high0, high1, period := core.CycleBudget(prof, pulsePIOClockHz)
	program, err := buildPulseProgram(high0, high1-high0, period-high1)
	if err != nil {
		return nil, err
	}

	sm, err := pio.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	offset, err := pio.AddProgram(program, -1)
	if err != nil {
		sm.Unclaim()
		return nil, err
	}

	pin.Configure(machine.PinConfig{Mode: pio.PinMode()})
	sm.SetPindirsConsecutive(pin, 1, true)

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSidesetParams(1, false, false)
	cfg.SetSidesetPins(pin)
	// Shift left so the most significant bit leaves first; autopull
	// one record per word.
	cfg.SetOutShift(false, true, uint16(record)*8)
	cfg.SetFIFOJoin(rp2pio.FifoJoinTx)
	cfg.SetWrap(offset, offset+uint8(len(program))-1)

	whole, frac, err := rp2pio.ClkDivFromFrequency(pulsePIOClockHz, CPUHz())
	if err != nil {
		sm.Unclaim()
		return nil, err
	}
	cfg.SetClkDivIntFrac(whole, frac)

	sm.Init(offset, cfg)
	sm.SetEnabled(true)

	return &PulseUnit{
		sm:     sm,
		dma:    getDMAChannel(pulseDMAChannel),
		dreq:   dreqPIOTx[pio.BlockIndex()][sm.StateMachineIndex()],
		record: record,
	}, nil
}

// QueueDepth returns how many buffers may be in flight at once.
func (u *PulseUnit) QueueDepth() int { return pulseQueueDepth }

// SetCompletionHandler registers the per-buffer completion callback.
// It runs on the drain goroutine, not in interrupt context, but the
// same rules apply: no allocation, no blocking.
func (u *PulseUnit) SetCompletionHandler(fn func(slot int)) {
	u.handler = fn
}

// Enqueue repacks data into the slot's word staging area and appends
// it to the DMA queue. data must be a whole number of records.
func (u *PulseUnit) Enqueue(slot int, data []byte) error {
	if u.count >= pulseQueueDepth {
		return errPulseQueueFull
	}
	if len(data)%u.record != 0 {
		return core.ErrBadRecordSize
	}

	for slot >= len(u.staging) {
		u.staging = append(u.staging, nil)
	}
	nwords := len(data) / u.record
	if cap(u.staging[slot]) < nwords {
		u.staging[slot] = make([]uint32, nwords)
	}
	words := u.staging[slot][:nwords]
	for i := 0; i < nwords; i++ {
		var w uint32
		for j := 0; j < u.record; j++ {
			w = w<<8 | uint32(data[i*u.record+j])
		}
		// Left-justify so shift-left emits the first byte's MSB first.
		words[i] = w << (32 - 8*uint(u.record))
	}

	u.queue[u.tail] = pulseXfer{slot: slot, words: words}
	u.tail = (u.tail + 1) % pulseQueueDepth
	u.count++
	return nil
}

// Start launches the drain loop if it is not already running. Buffers
// enqueued while draining are picked up in FIFO order.
func (u *PulseUnit) Start() error {
	if u.running {
		return nil
	}
	u.running = true
	u.aborted = false
	go u.drain()
	return nil
}

// Abort stops accepting buffers and cancels the in-flight transfer.
// Pulses already in the TX FIFO still go out.
func (u *PulseUnit) Abort() {
	u.aborted = true
}

func (u *PulseUnit) drain() {
	txReg := u.sm.TxReg()
	for {
		if u.aborted {
			u.dma.abort()
			u.head = u.tail
			u.count = 0
			u.running = false
			return
		}
		if u.count == 0 {
			u.running = false
			return
		}
		xfer := u.queue[u.head]
		u.head = (u.head + 1) % pulseQueueDepth

		u.dma.start32(txReg, xfer.words, u.dreq)
		for u.dma.busy() {
			if u.aborted {
				u.dma.abort()
				break
			}
			runtime.Gosched()
		}
		u.count--
		if u.handler != nil && !u.aborted {
			u.handler(xfer.slot)
		}
	}
}
