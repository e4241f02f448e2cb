package core

import (
	"errors"
	"testing"
)

func TestEncodeFrame(t *testing.T) {
	prof := Profiles["WS2812"]
	const hz = 80000000
	src := []byte{0xA5}
	dst := make([]Pulse, PulseCount(len(src)))
	n, err := EncodeFrame(dst, src, prof, hz)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	if n != 8 {
		t.Fatalf("encoded %d pulses, want 8", n)
	}

	high0, high1, period := CycleBudget(prof, hz)
	// 0xA5 = 10100101
	wantBits := []uint8{1, 0, 1, 0, 0, 1, 0, 1}
	for i, bit := range wantBits {
		want := high0
		if bit == 1 {
			want = high1
		}
		if dst[i].HighCycles != want {
			t.Errorf("pulse %d: high %d cycles, want %d", i, dst[i].HighCycles, want)
		}
		total := dst[i].HighCycles + dst[i].LowCycles
		if i < len(wantBits)-1 && total != period {
			t.Errorf("pulse %d: period %d cycles, want %d", i, total, period)
		}
	}

	// The final pulse carries the reset gap.
	reset := CyclesFromNanos(prof.ResetNanos(), hz)
	last := dst[7]
	if last.HighCycles+last.LowCycles != period+reset {
		t.Errorf("final pulse %d cycles, want %d (period plus reset)",
			last.HighCycles+last.LowCycles, period+reset)
	}
}

func TestEncodeChunkHasNoReset(t *testing.T) {
	prof := Profiles["WS2812"]
	const hz = 80000000
	dst := make([]Pulse, 8)
	n, err := EncodeChunk(dst, []byte{0x00}, prof, hz)
	if err != nil {
		t.Fatalf("EncodeChunk failed: %v", err)
	}
	_, _, period := CycleBudget(prof, hz)
	if got := dst[n-1].HighCycles + dst[n-1].LowCycles; got != period {
		t.Errorf("chunk final pulse %d cycles, want bare period %d", got, period)
	}
}

func TestEncodeFrameOverflow(t *testing.T) {
	dst := make([]Pulse, 7)
	_, err := EncodeFrame(dst, []byte{0xFF}, Profiles["WS2812"], 80000000)
	if err != ErrPulseOverflow {
		t.Errorf("expected ErrPulseOverflow, got %v", err)
	}
}

func TestEncodeFrameInvalidProfile(t *testing.T) {
	dst := make([]Pulse, 8)
	_, err := EncodeFrame(dst, []byte{0xFF}, TimingProfile{}, 80000000)
	if err != ErrInvalidProfile {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}

// recordingDriver counts pin writes for bit-bang tests.
type recordingDriver struct {
	writes int
	level  bool
}

func (d *recordingDriver) ConfigureOutput(pin GPIOPin) error { return nil }
func (d *recordingDriver) ConfigureInput(pin GPIOPin) error  { return nil }
func (d *recordingDriver) GetPin(pin GPIOPin) (bool, error)  { return d.level, nil }
func (d *recordingDriver) SetPin(pin GPIOPin, value bool) error {
	d.writes++
	d.level = value
	return nil
}

func TestBitBangWriteCount(t *testing.T) {
	drv := &recordingDriver{}
	src := []byte{0x0F, 0xF0, 0xAA}
	if err := BitBang(drv, 5, src, Profiles["WS2812"], 8000000); err != nil {
		t.Fatalf("BitBang failed: %v", err)
	}
	// Two level changes per bit.
	want := len(src) * 8 * 2
	if drv.writes != want {
		t.Errorf("%d pin writes, want %d", drv.writes, want)
	}
	if drv.level {
		t.Error("line must rest low after the frame")
	}
}

func TestBitBangOverrunDetection(t *testing.T) {
	defer SetCycleCounter(func() uint32 { return 0 })
	defer SetDelayCycles(func(n uint32) {})

	// A counter that jumps far ahead on every read makes every
	// byte-run blow its budget.
	var fake uint32
	SetCycleCounter(func() uint32 {
		fake += 1 << 20
		return fake
	})
	drv := &recordingDriver{}
	err := BitBang(drv, 5, []byte{0xFF}, Profiles["WS2812"], 8000000)
	if !errors.Is(err, ErrEncoderOverrun) {
		t.Errorf("expected ErrEncoderOverrun, got %v", err)
	}
}
