package core

// TransferUnit is the hardware abstraction for the DMA/peripheral
// engine that drains filled buffers onto the wire. Implementations:
// the in-memory simulator for host tests, and PIO+DMA on RP2 targets.
type TransferUnit interface {
	// QueueDepth returns the hardware transfer-queue limit: the
	// maximum number of buffers that may be enqueued concurrently.
	QueueDepth() int

	// Enqueue hands a filled buffer to the hardware. data aliases a
	// ring buffer slot and must not be touched by the caller until the
	// completion handler reports the slot. Enqueueing beyond
	// QueueDepth is an error.
	Enqueue(slot int, data []byte) error

	// Start begins draining enqueued buffers in FIFO order.
	Start() error

	// SetCompletionHandler registers the function invoked when a
	// buffer finishes draining. The handler runs in interrupt context
	// on hardware targets: it must not allocate, block, or perform
	// unbounded work.
	SetCompletionHandler(fn func(slot int))

	// Abort stops accepting new buffers. Buffers already enqueued
	// drain to completion; pulses committed to hardware cannot be
	// recalled.
	Abort()
}
