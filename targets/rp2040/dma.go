//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"device/rp"
)

// Single DMA channel register block. See rp.DMA_Type.
type dmaChannelHW struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	_           [12]volatile.Register32 // aliases
}

type dmaChannel struct {
	hw      *dmaChannelHW
	channel uint8
}

// DMA channels usable on the RP2040.
var dmaChannels = (*[12]dmaChannelHW)(unsafe.Pointer(rp.DMA))

// Static assignment of DMA channels. The pulse engine is the only DMA
// user in this firmware, so compile-time allocation is sufficient.
const pulseDMAChannel = 0

func getDMAChannel(channel uint8) dmaChannel {
	return dmaChannel{hw: &dmaChannels[channel], channel: channel}
}

// PIO TX data-request signals, indexed [pio][sm].
var dreqPIOTx = [2][4]uint32{
	{0x0, 0x1, 0x2, 0x3},
	{0x8, 0x9, 0xa, 0xb},
}

const (
	dmaCtrlEnable      = 1 << 0
	dmaCtrlSize32      = 2 << 2 // DATA_SIZE = word
	dmaCtrlIncrRead    = 1 << 4
	dmaCtrlChainShift  = 11
	dmaCtrlTREQShift   = 15
	dmaCtrlBusy        = 1 << 24
	dmaChanAbortOffset = 0x444 // CHAN_ABORT register in DMA block
)

// start32 begins a word-wise transfer from src into the FIFO register
// at dst, paced by dreq. Returns immediately; poll busy for completion.
func (ch dmaChannel) start32(dst *volatile.Register32, src []uint32, dreq uint32) {
	hw := ch.hw
	hw.READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&src[0]))))
	hw.WRITE_ADDR.Set(uint32(uintptr(unsafe.Pointer(dst))))
	hw.TRANS_COUNT.Set(uint32(len(src)))

	ctrl := uint32(dmaCtrlEnable | dmaCtrlSize32 | dmaCtrlIncrRead)
	ctrl |= uint32(ch.channel) << dmaCtrlChainShift // chain to self = no chain
	ctrl |= dreq << dmaCtrlTREQShift
	hw.CTRL_TRIG.Set(ctrl)
}

// busy reports whether a transfer is still in flight.
func (ch dmaChannel) busy() bool {
	return ch.hw.CTRL_TRIG.Get()&dmaCtrlBusy != 0
}

// abort cancels the in-flight transfer, if any.
func (ch dmaChannel) abort() {
	reg := (*volatile.Register32)(unsafe.Pointer(uintptr(unsafe.Pointer(rp.DMA)) + dmaChanAbortOffset))
	reg.Set(1 << ch.channel)
	for ch.busy() {
	}
}
