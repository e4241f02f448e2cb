// Multi-buffer transfer scheduler. Splits a lane's bytes across the
// ring per the FillPlan and drives the buffer lifecycle so the output
// is indistinguishable at the protocol level from one contiguous
// transmission. Payloads that fit the ring are fully pre-queued;
// longer payloads stream, with refills issued from the hardware
// completion callback.
package core

import (
	"errors"
	"sync/atomic"
)

var (
	ErrBusy        = errors.New("clockless: transmission already active")
	ErrRefillFault = errors.New("clockless: refill failed in completion callback")
)

// Scheduler owns one ring buffer set and one transfer unit for the
// lifetime of a channel. A single transmission is active at a time.
type Scheduler struct {
	ring *RingBufferSet
	unit TransferUnit

	// Per-transmission state, reinitialized by Transmit. The
	// completion callback reads plan and src but never mutates them;
	// counters are atomics because the callback runs in interrupt
	// context.
	plan    FillPlan
	src     []byte
	next    uint32 // index of the next chunk to refill
	done    uint32 // chunks fully drained
	aborted uint32
	active  uint32
	faulted uint32 // set when a callback refill fails; see fault
	fault   error
}

// NewScheduler pairs a ring with a transfer unit, checking that the
// ring fits the hardware queue depth. The depth is fixed
// configuration; a ring that does not fit is a setup error, not
// something to shrink around.
func NewScheduler(ring *RingBufferSet, unit TransferUnit) (*Scheduler, error) {
	if ring.Size() > unit.QueueDepth() {
		return nil, ErrQueueDepth
	}
	s := &Scheduler{ring: ring, unit: unit}
	unit.SetCompletionHandler(s.onBufferComplete)
	return s, nil
}

// Plan computes the FillPlan a transmission of src would use. Exposed
// for diagnostics and tests; Transmit computes its own.
func (s *Scheduler) Plan(src []byte, record int) (FillPlan, error) {
	return PlanFill(len(src), record, s.ring.Size(), s.ring.Capacity())
}

// TransmitLane transmits a lane's current byte buffer.
func (s *Scheduler) TransmitLane(lane *Lane) error {
	return s.Transmit(lane.Bytes, lane.Record)
}

// Transmit splits src on record boundaries across the ring and drains
// it through the transfer unit, blocking until the transmission
// completes or is aborted. The encoder downstream of the unit is
// expected to finish in a profile-determined bounded time, so there is
// no timeout here; timeouts belong to the capture session.
func (s *Scheduler) Transmit(src []byte, record int) error {
	if !atomic.CompareAndSwapUint32(&s.active, 0, 1) {
		return ErrBusy
	}
	defer atomic.StoreUint32(&s.active, 0)

	plan, err := PlanFill(len(src), record, s.ring.Size(), s.ring.Capacity())
	if err != nil {
		return err
	}
	if len(plan.Chunks) == 0 {
		return nil
	}

	s.plan = plan
	s.src = src
	atomic.StoreUint32(&s.done, 0)
	atomic.StoreUint32(&s.aborted, 0)
	atomic.StoreUint32(&s.faulted, 0)
	s.fault = nil
	s.ring.Reset()
	ResetRefillTrace()

	// Fill and enqueue the initial window: everything in pre-queued
	// mode, the first K chunks in streaming mode.
	window := len(plan.Chunks)
	if window > s.ring.Size() {
		window = s.ring.Size()
	}
	for i := 0; i < window; i++ {
		if err := s.enqueueChunk(i, EvtFill); err != nil {
			return err
		}
	}
	atomic.StoreUint32(&s.next, uint32(window))

	if err := s.unit.Start(); err != nil {
		return err
	}

	total := uint32(len(plan.Chunks))
	for atomic.LoadUint32(&s.done) < total {
		if atomic.LoadUint32(&s.aborted) != 0 {
			break
		}
		if atomic.LoadUint32(&s.faulted) != 0 {
			return s.fault
		}
		gosched()
	}
	if atomic.LoadUint32(&s.faulted) != 0 {
		return s.fault
	}
	return nil
}

// Abort cancels a streaming transmission by ceasing to refill.
// Buffers already enqueued drain to completion.
func (s *Scheduler) Abort() {
	atomic.StoreUint32(&s.aborted, 1)
	recordEvent(EvtAbort, 0, int(atomic.LoadUint32(&s.next)), 0, 0)
	s.unit.Abort()
}

// enqueueChunk copies chunk idx into its ring slot and hands it to the
// transfer unit. Called on the transmit goroutine for the initial
// window and from completion-callback context for refills, so it must
// stay allocation-free.
func (s *Scheduler) enqueueChunk(idx int, evt uint8) error {
	c := s.plan.Chunks[idx]
	data, err := s.ring.Fill(c.Buffer, s.src[c.Offset:c.End()])
	if err != nil {
		return err
	}
	if err := s.ring.MarkEnqueued(c.Buffer); err != nil {
		return err
	}
	recordEvent(evt, c.Buffer, idx, c.Offset, c.Length)
	return s.unit.Enqueue(c.Buffer, data)
}

// onBufferComplete is the hardware buffer-complete notification.
// Interrupt context: copy the next pre-computed chunk into the freed
// slot and re-enqueue, nothing more.
func (s *Scheduler) onBufferComplete(slot int) {
	s.ring.MarkComplete(slot)
	idx := int(atomic.AddUint32(&s.done, 1)) - 1
	recordEvent(EvtComplete, slot, idx, 0, 0)

	if atomic.LoadUint32(&s.aborted) != 0 {
		return
	}
	nxt := int(atomic.AddUint32(&s.next, 1)) - 1
	if nxt >= len(s.plan.Chunks) {
		atomic.AddUint32(&s.next, ^uint32(0)) // no chunk taken, undo
		return
	}
	if err := s.enqueueChunk(nxt, EvtRefill); err != nil {
		s.fault = err
		atomic.StoreUint32(&s.faulted, 1)
	}
}
