package core

// CriticalSection is a scoped interrupt-masking guard. Pulse emission
// runs with interrupts masked because a preemption longer than the
// protocol's tolerated pulse gap corrupts the signal mid-bit.
//
// Usage is an explicit enter/exit pair:
//
//	var cs CriticalSection
//	cs.Enter()
//	// ... emit one byte-run of pulses ...
//	cs.Exit()
//
// Enter/Exit pairs must not nest on the same guard value.
type CriticalSection struct {
	state  irqState
	active bool
}

// Enter masks interrupts and records the previous state.
func (cs *CriticalSection) Enter() {
	cs.state = disableInterrupts()
	cs.active = true
}

// Exit restores the interrupt state saved by Enter. Calling Exit on an
// inactive guard is a no-op.
func (cs *CriticalSection) Exit() {
	if !cs.active {
		return
	}
	cs.active = false
	restoreInterrupts(cs.state)
}

// Cycle counter and busy-delay hooks. Targets register hardware-backed
// implementations (e.g. the SysTick/cycle counter on ARM); the host
// defaults are no-ops so portable tests can run the encoder without
// real timing.
var (
	cycleCount  = func() uint32 { return 0 }
	delayCycles = func(n uint32) {}

	// pinWrite optionally bypasses the GPIODriver error path inside
	// the critical section.
	pinWrite func(GPIOPin, bool)
)

// SetCycleCounter registers a function returning the current clock
// cycle. Used by the bit-bang encoder for overrun detection.
func SetCycleCounter(fn func() uint32) {
	if fn != nil {
		cycleCount = fn
	}
}

// SetDelayCycles registers a busy-wait of n clock cycles.
func SetDelayCycles(fn func(n uint32)) {
	if fn != nil {
		delayCycles = fn
	}
}

// SetFastPinWriter registers a raw pin writer that bypasses the
// GPIODriver error path inside the critical section. Optional; when
// unset the encoder falls back to GPIODriver.SetPin.
func SetFastPinWriter(fn func(GPIOPin, bool)) {
	pinWrite = fn
}
