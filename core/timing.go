package core

import "errors"

var (
	ErrInvalidProfile = errors.New("clockless: invalid timing profile")
	ErrUnknownChipset = errors.New("clockless: unknown chipset")
)

// TimingProfile describes the three-phase bit timing of a clockless
// chipset in nanoseconds. A bit period is T1+T2+T3: a 0 bit holds the
// line high for T1, a 1 bit for T1+T2, and the line is low for the
// remainder. A low phase of at least ResetUS microseconds latches the
// frame.
type TimingProfile struct {
	T1      uint32 // high time common to both bits, ns
	T2      uint32 // extra high time for a 1 bit, ns
	T3      uint32 // minimum trailing low time, ns
	ResetUS uint32 // frame latch gap, us
}

// Validate rejects profiles with a zero phase or reset gap. A zero T2
// would make the two bit values indistinguishable on the wire.
func (p TimingProfile) Validate() error {
	if p.T1 == 0 || p.T2 == 0 || p.T3 == 0 || p.ResetUS == 0 {
		return ErrInvalidProfile
	}
	return nil
}

// BitPeriod returns the total duration of one bit in nanoseconds.
func (p TimingProfile) BitPeriod() uint32 {
	return p.T1 + p.T2 + p.T3
}

// HighNanos returns the nominal high time for a bit value.
func (p TimingProfile) HighNanos(bit byte) uint32 {
	if bit != 0 {
		return p.T1 + p.T2
	}
	return p.T1
}

// Threshold returns the decode boundary between the two bit values:
// the midpoint of the two nominal high times. A captured high phase
// above the threshold classifies as a 1.
func (p TimingProfile) Threshold() uint32 {
	return p.T1 + p.T2/2
}

// ResetNanos returns the frame latch gap in nanoseconds.
func (p TimingProfile) ResetNanos() uint32 {
	return p.ResetUS * 1000
}

// Profiles holds the timing presets for the supported single-wire
// chipsets. Clocked chipsets (APA102, SK9822) have no pulse timing and
// do not belong here.
var Profiles = map[string]TimingProfile{
	"WS2812":  {T1: 225, T2: 355, T3: 645, ResetUS: 280},
	"WS2812B": {T1: 400, T2: 450, T3: 450, ResetUS: 300},
	"WS2811":  {T1: 500, T2: 2000, T3: 2000, ResetUS: 280},
	"SK6812":  {T1: 300, T2: 300, T3: 900, ResetUS: 80},
	"TM1803":  {T1: 700, T2: 1100, T3: 700, ResetUS: 280},
}

// ProfileFor looks up the timing preset for a chipset name.
func ProfileFor(chipset string) (TimingProfile, error) {
	p, ok := Profiles[chipset]
	if !ok {
		return TimingProfile{}, ErrUnknownChipset
	}
	return p, nil
}
