package core

// CaptureConfig configures one capture attempt.
type CaptureConfig struct {
	Pin        GPIOPin // pin to observe (loopback-wired to the TX pin)
	MaxSymbols int     // capture buffer limit in symbols
}

// CaptureDriver is the hardware abstraction for the receive channel.
// The driver pushes measured (high, low) symbols into the FIFO handed
// to Arm and reports completion once it has seen a reset gap or filled
// the buffer. There is one physical receive channel; the driver handle
// is owned by a single CaptureSession at a time.
type CaptureDriver interface {
	// Arm clears state and begins capturing into fifo.
	Arm(cfg CaptureConfig, fifo *SymbolFIFO) error

	// Completed reports whether the capture has terminated (reset gap
	// observed or buffer full). Polled by the session's wait loop.
	Completed() bool

	// Disarm stops capturing. Idempotent.
	Disarm()
}
