//go:build rp2040

package main

// CPU-driven fallback for when both PIO blocks are out of program
// space or state machines. Wraps the tinygo.org/x/drivers ws2812
// bit-banged driver behind the TransferUnit interface; timing comes
// from cycle-counted assembly in the driver, so this path has no
// overrun detection and is only suitable for short strips.

import (
	"errors"

	"machine"

	"tinygo.org/x/drivers/ws2812"

	"github.com/FastLED/clockless/core"
)

var errFallbackRecord = errors.New("fallback: only 3-byte records supported")

// FallbackUnit implements core.TransferUnit by bit-banging each
// buffer synchronously from Start.
type FallbackUnit struct {
	dev     ws2812.Device
	record  int
	handler func(slot int)

	queue   []fallbackXfer
	words   []uint32
	aborted bool
}

type fallbackXfer struct {
	slot int
	data []byte
}

const fallbackQueueDepth = 4

// NewFallbackUnit configures pin for output and wraps it in the
// bit-banged driver. The driver emits 24 bits per element, so only
// 3-byte records are representable.
func NewFallbackUnit(pin machine.Pin, record int) (*FallbackUnit, error) {
	if record != 3 {
		return nil, errFallbackRecord
	}
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &FallbackUnit{
		dev:    ws2812.New(pin),
		record: record,
		queue:  make([]fallbackXfer, 0, fallbackQueueDepth),
	}, nil
}

func (u *FallbackUnit) QueueDepth() int { return fallbackQueueDepth }

func (u *FallbackUnit) SetCompletionHandler(fn func(slot int)) {
	u.handler = fn
}

func (u *FallbackUnit) Enqueue(slot int, data []byte) error {
	if len(u.queue) >= fallbackQueueDepth {
		return errPulseQueueFull
	}
	if len(data)%u.record != 0 {
		return core.ErrBadRecordSize
	}
	u.queue = append(u.queue, fallbackXfer{slot: slot, data: data})
	return nil
}

// Start drains the queue synchronously. Completion handlers run
// inline, so refills enqueued by the handler are picked up before
// Start returns.
func (u *FallbackUnit) Start() error {
	u.aborted = false
	for len(u.queue) > 0 && !u.aborted {
		xfer := u.queue[0]
		u.queue = u.queue[:copy(u.queue, u.queue[1:])]

		nwords := len(xfer.data) / u.record
		if cap(u.words) < nwords {
			u.words = make([]uint32, nwords)
		}
		words := u.words[:nwords]
		for i := range words {
			d := xfer.data[i*3:]
			words[i] = uint32(d[0])<<16 | uint32(d[1])<<8 | uint32(d[2])
		}
		if err := u.dev.WriteRaw(words); err != nil {
			return err
		}
		if u.handler != nil {
			u.handler(xfer.slot)
		}
	}
	return nil
}

func (u *FallbackUnit) Abort() {
	u.aborted = true
	u.queue = u.queue[:0]
}
