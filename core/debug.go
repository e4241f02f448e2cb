package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// RefillEvent captures one streaming-mode buffer lifecycle step for
// post-mortem analysis. The capture is a fixed ring written from
// completion-callback context, so it never allocates or blocks.
type RefillEvent struct {
	EventType uint8  // Event type code
	Slot      uint8  // Ring buffer slot
	Chunk     uint16 // FillPlan chunk index
	Offset    uint32 // Chunk byte offset
	Length    uint32 // Chunk byte count
}

// Event type codes
const (
	EvtFill     = 1 // Initial fill before Start
	EvtRefill   = 2 // Refill from completion callback
	EvtComplete = 3 // Buffer-complete notification
	EvtAbort    = 4 // Transmission aborted
)

const refillRingSize = 32 // Keep last 32 events for post-mortem

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	refillRing     [refillRingSize]RefillEvent
	refillRingHead uint8
	refillRingLen  uint8
)

// SetDebugWriter sets the platform-specific debug output function.
// Targets redirect this to UART or USB; the host CLI points it at log.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// recordEvent appends to the refill trace ring. Safe to call from
// completion-callback context.
func recordEvent(evt uint8, slot int, chunk int, offset, length int) {
	refillRing[refillRingHead] = RefillEvent{
		EventType: evt,
		Slot:      uint8(slot),
		Chunk:     uint16(chunk),
		Offset:    uint32(offset),
		Length:    uint32(length),
	}
	refillRingHead = (refillRingHead + 1) % refillRingSize
	if refillRingLen < refillRingSize {
		refillRingLen++
	}
}

// RefillTrace returns the captured events, oldest first. For
// diagnostics after a failed transmission.
func RefillTrace() []RefillEvent {
	out := make([]RefillEvent, 0, refillRingLen)
	start := (int(refillRingHead) + refillRingSize - int(refillRingLen)) % refillRingSize
	for i := 0; i < int(refillRingLen); i++ {
		out = append(out, refillRing[(start+i)%refillRingSize])
	}
	return out
}

// ResetRefillTrace clears the trace, typically before a transmission.
func ResetRefillTrace() {
	refillRingHead = 0
	refillRingLen = 0
}
