package core

import (
	"errors"
	"sync/atomic"
)

var (
	ErrQueueDepth   = errors.New("clockless: ring size exceeds hardware transfer queue depth")
	ErrSlotOwned    = errors.New("clockless: buffer slot is owned by hardware")
	ErrSlotNotOwned = errors.New("clockless: completion for a slot not owned by hardware")
)

// Slot ownership states. Ownership of a slot transfers atomically:
// once enqueued to hardware the producer must not touch the slot again
// until a completion notification returns it.
const (
	slotIdle     uint32 = iota // producer may fill
	slotEnqueued               // hardware owns, draining
)

// RingBufferSet is the fixed ring of pre-allocated transfer buffers
// shared by a channel for its lifetime. The initial fills happen on
// the calling goroutine and refills happen in completion-callback
// context, so slot ownership uses lock-free atomic flags rather than
// blocking synchronization.
type RingBufferSet struct {
	bufs  [][]byte
	state []uint32 // slotIdle / slotEnqueued, accessed atomically
	cap   int
}

// NewRingBufferSet allocates a ring of count buffers of bufCap bytes.
// queueDepth is the hardware transfer-queue limit; count must not
// exceed it, and this is a configuration check, never something to
// derive dynamically from buffer demand.
func NewRingBufferSet(count, bufCap, queueDepth int) (*RingBufferSet, error) {
	if count <= 0 || bufCap <= 0 {
		return nil, ErrBadRingConfig
	}
	if count > queueDepth {
		return nil, ErrQueueDepth
	}
	r := &RingBufferSet{
		bufs:  make([][]byte, count),
		state: make([]uint32, count),
		cap:   bufCap,
	}
	for i := range r.bufs {
		r.bufs[i] = make([]byte, bufCap)
	}
	return r, nil
}

// Size returns the number of buffers in the ring.
func (r *RingBufferSet) Size() int { return len(r.bufs) }

// Capacity returns the byte capacity of each buffer.
func (r *RingBufferSet) Capacity() int { return r.cap }

// Fill copies data into slot and returns the filled view. Fails if
// the slot is currently owned by hardware or data exceeds capacity.
// The returned slice aliases the ring's storage and is only valid
// until the slot is reused.
func (r *RingBufferSet) Fill(slot int, data []byte) ([]byte, error) {
	if len(data) > r.cap {
		return nil, ErrBufferCapacity
	}
	if atomic.LoadUint32(&r.state[slot]) != slotIdle {
		return nil, ErrSlotOwned
	}
	n := copy(r.bufs[slot], data)
	return r.bufs[slot][:n], nil
}

// MarkEnqueued transfers slot ownership to hardware. Must be called
// after Fill, before handing the buffer to the transfer unit.
func (r *RingBufferSet) MarkEnqueued(slot int) error {
	if !atomic.CompareAndSwapUint32(&r.state[slot], slotIdle, slotEnqueued) {
		return ErrSlotOwned
	}
	return nil
}

// MarkComplete returns slot ownership to the producer. Called from the
// hardware completion notification.
func (r *RingBufferSet) MarkComplete(slot int) error {
	if !atomic.CompareAndSwapUint32(&r.state[slot], slotEnqueued, slotIdle) {
		return ErrSlotNotOwned
	}
	return nil
}

// InFlight returns the number of slots currently owned by hardware.
func (r *RingBufferSet) InFlight() int {
	n := 0
	for i := range r.state {
		if atomic.LoadUint32(&r.state[i]) == slotEnqueued {
			n++
		}
	}
	return n
}

// Reset forcibly returns all slots to the producer. Only legal when
// the transfer unit is stopped.
func (r *RingBufferSet) Reset() {
	for i := range r.state {
		atomic.StoreUint32(&r.state[i], slotIdle)
	}
}
