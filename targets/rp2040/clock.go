//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"machine"

	"github.com/FastLED/clockless/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // Raw timer high word
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// InitClock registers the RP2040 hardware timer as the pulse-timing
// reference. The RP2040 timer is a 64-bit microsecond counter, so one
// tick is one cycle of a 1MHz pulse clock; the encoder's budgets are
// computed against that rate rather than the CPU frequency.
func InitClock() uint32 {
	core.SetCycleCounter(timerTicks)
	core.SetDelayCycles(delayTicks)
	return 1_000_000
}

// timerTicks reads the low 32 bits of the microsecond counter
func timerTicks() uint32 {
	return timerRAWL.Get()
}

// delayTicks busy-waits for n timer ticks
func delayTicks(n uint32) {
	start := timerRAWL.Get()
	for timerRAWL.Get()-start < n {
	}
}

// HardwareUptime reads the full 64-bit timer.
// Must read high, low, high again to detect rollover mid-read.
func HardwareUptime() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// CPUHz returns the system clock frequency for PIO divider math.
func CPUHz() uint32 {
	return machine.CPUFrequency()
}
