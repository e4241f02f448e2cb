// Fill planning for the multi-buffer transfer scheduler. A FillPlan
// splits one lane's byte stream across the fixed ring of hardware
// buffers so that no buffer boundary ever falls inside a color record.
// The hardware inserts an idle gap between buffers; a gap landing
// mid-record can corrupt visible high-order bits, while a gap at a
// record boundary can at worst flip the least significant bit of the
// preceding byte. Rounding the chunk size is the only permitted lever:
// the ring size and the transfer queue depth are fixed configuration.
package core

import (
	"errors"
	"fmt"
)

var (
	ErrBufferCapacity = errors.New("clockless: aligned chunk exceeds buffer capacity")
	ErrBadRecordSize  = errors.New("clockless: record size must be positive")
	ErrBadRingConfig  = errors.New("clockless: ring needs at least one buffer with positive capacity")
)

// Chunk assigns one contiguous byte range of the lane stream to a ring
// buffer slot.
type Chunk struct {
	Buffer int // ring buffer index, chunk i goes to slot i mod K
	Offset int // byte offset into the lane stream
	Length int // byte count
}

// End returns the exclusive end offset of the chunk.
func (c Chunk) End() int { return c.Offset + c.Length }

// FillPlan is the buffer assignment for one transmission of a lane.
// Computed fresh per transmission and discarded afterwards.
type FillPlan struct {
	Chunks []Chunk
	Record int // color record size in bytes
	Total  int // lane byte length, equals the sum of chunk lengths
}

// Streaming reports whether the plan needs mid-transmission refills,
// i.e. it has more chunks than ring buffers.
func (p FillPlan) Streaming(ringSize int) bool {
	return len(p.Chunks) > ringSize
}

// alignDown rounds n down to a multiple of record.
func alignDown(n, record int) int {
	return n - n%record
}

// PlanFill computes the FillPlan for a lane stream of total bytes with
// the given color record size, across ringSize buffers of bufCap bytes
// each.
//
// The nominal chunk is ceil(total/ringSize) rounded down to a record
// multiple (or one record if that rounds to zero), clamped to the
// largest record multiple that fits a buffer. Chunks are assigned
// round-robin; the last chunk absorbs the remainder so it ends exactly
// at total. A final chunk that would exceed the buffer capacity is a
// configuration error, never silently truncated.
func PlanFill(total, record, ringSize, bufCap int) (FillPlan, error) {
	if record <= 0 {
		return FillPlan{}, ErrBadRecordSize
	}
	if ringSize <= 0 || bufCap <= 0 {
		return FillPlan{}, ErrBadRingConfig
	}
	plan := FillPlan{Record: record, Total: total}
	if total == 0 {
		return plan, nil
	}

	maxChunk := alignDown(bufCap, record)
	if maxChunk == 0 {
		return FillPlan{}, fmt.Errorf("%w (record %d > buffer capacity %d)",
			ErrBufferCapacity, record, bufCap)
	}

	naive := (total + ringSize - 1) / ringSize
	nominal := alignDown(naive, record)
	if nominal == 0 {
		nominal = record
	}
	if nominal > maxChunk {
		nominal = maxChunk
	}

	n := total / nominal
	if n == 0 {
		n = 1
	}

	plan.Chunks = make([]Chunk, 0, n)
	off := 0
	for i := 0; i < n; i++ {
		length := nominal
		if i == n-1 {
			length = total - off // last chunk absorbs the remainder
		}
		plan.Chunks = append(plan.Chunks, Chunk{
			Buffer: i % ringSize,
			Offset: off,
			Length: length,
		})
		off += length
	}

	last := plan.Chunks[len(plan.Chunks)-1]
	if last.Length > bufCap {
		return FillPlan{}, fmt.Errorf("%w (final chunk %d bytes at offset %d, capacity %d)",
			ErrBufferCapacity, last.Length, last.Offset, bufCap)
	}
	return plan, nil
}

// Validate checks the plan invariants: every chunk boundary except the
// stream end is a record multiple, chunks are contiguous, and lengths
// sum to the total.
func (p FillPlan) Validate() error {
	off := 0
	for i, c := range p.Chunks {
		if c.Offset != off {
			return fmt.Errorf("clockless: chunk %d starts at %d, want %d", i, c.Offset, off)
		}
		if c.Offset%p.Record != 0 {
			return fmt.Errorf("clockless: chunk %d offset %d splits a record", i, c.Offset)
		}
		if i < len(p.Chunks)-1 && c.End()%p.Record != 0 {
			return fmt.Errorf("clockless: chunk %d ends at %d inside a record", i, c.End())
		}
		off = c.End()
	}
	if off != p.Total {
		return fmt.Errorf("clockless: chunks cover %d bytes, lane has %d", off, p.Total)
	}
	return nil
}
