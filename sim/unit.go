package sim

import (
	"errors"

	"github.com/FastLED/clockless/core"
)

var (
	ErrQueueFull  = errors.New("sim: transfer queue full")
	ErrNotStarted = errors.New("sim: transfer unit has no completion handler")
)

// TransferUnit is a synchronous model of the DMA transfer engine. It
// drains enqueued buffers in FIFO order, encoding each through the
// bit-pulse encoder onto the wire and invoking the completion handler
// after each buffer, exactly once, in order. Completion handlers run
// inline during Start, which mirrors the hardware constraint that they
// may only copy and re-enqueue.
type TransferUnit struct {
	wire    *Wire
	depth   int
	queue   []queuedBuffer
	handler func(slot int)
	aborted bool
	scratch []core.Pulse

	// Enqueued counts total buffers accepted; HighWater tracks the
	// deepest the queue ever got. Both are test observability.
	Enqueued  int
	HighWater int
}

type queuedBuffer struct {
	slot int
	data []byte
}

// NewTransferUnit returns a unit draining onto wire with the given
// hardware queue depth.
func NewTransferUnit(wire *Wire, queueDepth int) *TransferUnit {
	return &TransferUnit{
		wire:  wire,
		depth: queueDepth,
	}
}

func (u *TransferUnit) QueueDepth() int { return u.depth }

func (u *TransferUnit) SetCompletionHandler(fn func(slot int)) {
	u.handler = fn
}

// Enqueue accepts a buffer, failing when the hardware queue is full.
func (u *TransferUnit) Enqueue(slot int, data []byte) error {
	if u.aborted {
		return nil
	}
	if len(u.queue) >= u.depth {
		return ErrQueueFull
	}
	u.queue = append(u.queue, queuedBuffer{slot: slot, data: data})
	u.Enqueued++
	if len(u.queue) > u.HighWater {
		u.HighWater = len(u.queue)
	}
	return nil
}

// Start drains the queue. Each buffer is encoded onto the wire; the
// completion handler may enqueue the next buffer, so draining runs
// until the queue is empty. The inter-buffer boundary gap is applied
// whenever another buffer follows; the reset gap terminates the
// transmission once the queue stays empty.
func (u *TransferUnit) Start() error {
	if u.handler == nil {
		return ErrNotStarted
	}
	u.aborted = false
	for len(u.queue) > 0 {
		qb := u.queue[0]
		u.queue = u.queue[1:]

		need := core.PulseCount(len(qb.data))
		if cap(u.scratch) < need {
			u.scratch = make([]core.Pulse, need)
		}
		n, err := core.EncodeChunk(u.scratch[:need], qb.data, u.wire.Profile, u.wire.ClockHz)
		if err != nil {
			return err
		}
		u.wire.appendPulses(u.scratch[:n])

		u.handler(qb.slot)
		if len(u.queue) > 0 {
			u.wire.markBoundary()
		}
	}
	u.wire.terminate()
	return nil
}

// Abort drops buffers not yet draining. In this synchronous model the
// current buffer has already fully drained by the time anything can
// call Abort, matching the rule that committed pulses are never
// recalled.
func (u *TransferUnit) Abort() {
	u.aborted = true
	u.queue = u.queue[:0]
}
