package sim

import (
	"errors"
	"testing"

	"github.com/FastLED/clockless/core"
)

const clockHz = 80000000

func frame(records int) []byte {
	out := make([]byte, records*3)
	for i := range out {
		out[i] = byte((i*37 + 11) & 0xFF)
	}
	return out
}

// loopbackRig wires a scheduler, transfer unit, wire, and capture
// channel together the way a target board with the data line looped to
// an input pin would be.
type loopbackRig struct {
	wire  *Wire
	unit  *TransferUnit
	sched *core.Scheduler
	rx    *Capture
}

func newRig(t *testing.T, ringSize, bufCap int) *loopbackRig {
	t.Helper()
	wire := NewWire(core.Profiles["WS2812"], clockHz)
	unit := NewTransferUnit(wire, ringSize)
	ring, err := core.NewRingBufferSet(ringSize, bufCap, unit.QueueDepth())
	if err != nil {
		t.Fatalf("NewRingBufferSet failed: %v", err)
	}
	sched, err := core.NewScheduler(ring, unit)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	return &loopbackRig{
		wire:  wire,
		unit:  unit,
		sched: sched,
		rx:    NewCapture(wire),
	}
}

func (rig *loopbackRig) roundTrip(t *testing.T, src []byte) ([]byte, int, error) {
	t.Helper()
	session := core.NewCaptureSession(rig.rx, len(src)*8+8)
	out := make([]byte, len(src))
	n, err := session.Capture(core.CaptureConfig{Pin: 2}, rig.wire.Profile, out,
		func() error { return rig.sched.Transmit(src, 3) }, 250)
	return out, n, err
}

func TestLoopbackRoundTrip(t *testing.T) {
	// decode(encode(B)) == B for a record-aligned payload that fits
	// the ring in pre-queued mode.
	rig := newRig(t, 3, 1024)
	src := frame(100)
	out, n, err := rig.roundTrip(t, src)
	if err != nil {
		t.Fatalf("loopback failed: %v", err)
	}
	if n != len(src) {
		t.Fatalf("decoded %d bytes, want %d", n, len(src))
	}
	if ms := core.CompareFrames(src, out[:n], 3); len(ms) != 0 {
		t.Errorf("%d mismatches, first: %v", len(ms), ms[0])
	}
}

func TestLoopbackStreaming(t *testing.T) {
	// Payload exceeds ring capacity: the transmission streams through
	// refills yet decodes as one contiguous frame.
	rig := newRig(t, 3, 99)
	src := frame(330) // 990 bytes through 3x99 buffers, 10 chunks
	out, n, err := rig.roundTrip(t, src)
	if err != nil {
		t.Fatalf("streaming loopback failed: %v", err)
	}
	if n != len(src) {
		t.Fatalf("decoded %d bytes, want %d", n, len(src))
	}
	if ms := core.CompareFrames(src, out[:n], 3); len(ms) != 0 {
		t.Errorf("%d mismatches, first: %v", len(ms), ms[0])
	}
	if rig.unit.HighWater > 3 {
		t.Errorf("transfer queue reached %d buffers, limit 3", rig.unit.HighWater)
	}
}

func TestLoopbackSurvivesBoundaryGap(t *testing.T) {
	// A benign inter-buffer idle gap extends a low phase at a record
	// boundary; it must not corrupt any byte.
	rig := newRig(t, 3, 99)
	rig.wire.BoundaryGapNS = 40000 // well under the reset gap
	src := frame(330)
	out, n, err := rig.roundTrip(t, src)
	if err != nil {
		t.Fatalf("loopback failed: %v", err)
	}
	if ms := core.CompareFrames(src, out[:n], 3); len(ms) != 0 {
		t.Errorf("benign gap corrupted %d bytes, first: %v", len(ms), ms[0])
	}
}

func TestLoopbackLSBCorruptionBound(t *testing.T) {
	// Worst-case boundary jitter shaves the high phase of the last
	// symbol before each split. Because splits land on record
	// boundaries, the only byte that may differ is the one adjacent to
	// a split, and only in its least significant bit.
	rig := newRig(t, 3, 99)
	rig.wire.BoundaryJitterNS = rig.wire.Profile.T2 // full shave, 1 reads as 0
	src := frame(330)
	out, n, err := rig.roundTrip(t, src)
	if err != nil {
		t.Fatalf("loopback failed: %v", err)
	}
	if n != len(src) {
		t.Fatalf("decoded %d bytes, want %d", n, len(src))
	}

	plan, err := rig.sched.Plan(src, 3)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	boundaryBytes := make(map[int]bool)
	for _, c := range plan.Chunks[:len(plan.Chunks)-1] {
		boundaryBytes[c.End()-1] = true
	}
	for _, m := range core.CompareFrames(src, out[:n], 3) {
		if !boundaryBytes[m.Index] {
			t.Errorf("corruption away from a buffer boundary: %v", m)
		}
		if !m.LSBOnly() {
			t.Errorf("more than the LSB flipped: %v", m)
		}
	}
}

func TestLoopbackTimeout(t *testing.T) {
	rig := newRig(t, 3, 256)
	session := core.NewCaptureSession(rig.rx, 64)
	out := make([]byte, 8)
	// The trigger never transmits: nothing appears on the wire.
	n, err := session.Capture(core.CaptureConfig{}, rig.wire.Profile, out,
		func() error { return nil }, 1)
	if !errors.Is(err, core.ErrDecodeTimeout) {
		t.Errorf("expected ErrDecodeTimeout, got %v", err)
	}
	if n != 0 {
		t.Errorf("timeout returned %d bytes, want 0", n)
	}
}

func TestBitBangLoopback(t *testing.T) {
	// End-to-end over the GPIO path: virtual clock, edge recorder,
	// decoder. No transfer unit involved.
	clk := NewClock(clockHz)
	clk.Install()
	defer core.SetCycleCounter(func() uint32 { return 0 })
	defer core.SetDelayCycles(func(n uint32) {})

	rec := NewEdgeRecorder(clk)
	pin := core.GPIOPin(7)
	if err := rec.ConfigureOutput(pin); err != nil {
		t.Fatalf("ConfigureOutput failed: %v", err)
	}

	prof := core.Profiles["WS2812"]
	src := frame(20)
	if err := core.BitBang(rec, pin, src, prof, clockHz); err != nil {
		t.Fatalf("BitBang failed: %v", err)
	}

	syms := rec.Flush(pin)
	if len(syms) != len(src)*8 {
		t.Fatalf("recorded %d symbols, want %d", len(syms), len(src)*8)
	}
	out := make([]byte, len(src))
	n, err := core.Decode(out, syms, prof)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if n != len(src) {
		t.Fatalf("decoded %d bytes, want %d", n, len(src))
	}
	if ms := core.CompareFrames(src, out[:n], 3); len(ms) != 0 {
		t.Errorf("%d mismatches, first: %v", len(ms), ms[0])
	}
}

func TestBitBangOverrunViaClock(t *testing.T) {
	clk := NewClock(clockHz)
	// Inject a long preemption during the second byte's pulses.
	clk.OverrunAtCall = 20
	clk.OverrunCycles = clockHz / 1000 // a 1ms stall
	clk.Install()
	defer core.SetCycleCounter(func() uint32 { return 0 })
	defer core.SetDelayCycles(func(n uint32) {})

	rec := NewEdgeRecorder(clk)
	pin := core.GPIOPin(7)
	rec.ConfigureOutput(pin)

	err := core.BitBang(rec, pin, frame(4), core.Profiles["WS2812"], clockHz)
	if !errors.Is(err, core.ErrEncoderOverrun) {
		t.Errorf("expected ErrEncoderOverrun, got %v", err)
	}
}
