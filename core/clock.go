package core

// DefaultClockHz is the default pulse-clock frequency. At 8MHz one
// cycle is 125ns, fine enough to place every preset's phase edges
// within a cycle of nominal.
const DefaultClockHz = 8000000

// CyclesFromNanos converts a duration to clock cycles at hz,
// rounding to nearest.
func CyclesFromNanos(ns, hz uint32) uint32 {
	return uint32((uint64(ns)*uint64(hz) + 500000000) / 1000000000)
}

// NanosFromCycles converts clock cycles at hz back to nanoseconds,
// rounding to nearest.
func NanosFromCycles(cycles, hz uint32) uint32 {
	return uint32((uint64(cycles)*1000000000 + uint64(hz)/2) / uint64(hz))
}

// CycleBudget returns the profile's phase widths in cycles at hz:
// the high time of a 0 bit, the high time of a 1 bit, and the full
// bit period.
func CycleBudget(p TimingProfile, hz uint32) (high0, high1, period uint32) {
	high0 = CyclesFromNanos(p.T1, hz)
	high1 = CyclesFromNanos(p.T1+p.T2, hz)
	period = CyclesFromNanos(p.BitPeriod(), hz)
	return high0, high1, period
}
