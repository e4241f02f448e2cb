// Capture session: the loopback validation glue. Arms the receive
// channel, fires one transmit pass, waits with a bounded timeout, and
// decodes what came back. The session never retries; retry policy
// belongs to the caller.
package core

import (
	"errors"
	"time"
)

var (
	ErrDecodeTimeout   = errors.New("clockless: no signal captured before timeout")
	ErrCaptureNotArmed = errors.New("clockless: capture session not armed")
)

// WaitStatus is the result of waiting for a capture to finish.
type WaitStatus uint8

const (
	WaitSuccess WaitStatus = iota
	WaitTimeout
)

// SettleDelay is the pause between arming the receiver and triggering
// the transmitter, letting the capture hardware reach steady state.
const SettleDelay = 50 * time.Microsecond

// CaptureSession is one validation attempt: transient, created per
// capture, read once, discarded.
type CaptureSession struct {
	rx    CaptureDriver
	fifo  *SymbolFIFO
	armed bool
	syms  []Symbol
}

// NewCaptureSession wraps the receive channel driver. maxSymbols
// bounds the raw capture buffer.
func NewCaptureSession(rx CaptureDriver, maxSymbols int) *CaptureSession {
	return &CaptureSession{
		rx:   rx,
		fifo: NewSymbolFIFO(maxSymbols + 1),
	}
}

// Begin clears the receive buffer and arms the capture. Returns false
// when the driver refuses to arm (channel busy or bad config).
func (cs *CaptureSession) Begin(cfg CaptureConfig) bool {
	cs.fifo.Reset()
	cs.syms = nil
	if cfg.MaxSymbols == 0 {
		cfg.MaxSymbols = cs.fifo.size - 1
	}
	if err := cs.rx.Arm(cfg, cs.fifo); err != nil {
		debugPrintln("capture arm failed: " + err.Error())
		return false
	}
	cs.armed = true
	return true
}

// Wait blocks until the capture completes or timeoutMS elapses. On
// timeout the session is disarmed and whatever partial state exists is
// discarded.
func (cs *CaptureSession) Wait(timeoutMS uint32) WaitStatus {
	deadline := time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
	for !cs.rx.Completed() {
		if time.Now().After(deadline) {
			cs.rx.Disarm()
			cs.armed = false
			return WaitTimeout
		}
		gosched()
	}
	cs.rx.Disarm()
	cs.syms = cs.fifo.Drain()
	return WaitSuccess
}

// DecodeInto decodes the captured symbols against prof into out and
// returns the byte count.
func (cs *CaptureSession) DecodeInto(prof TimingProfile, out []byte) (int, error) {
	if cs.syms == nil {
		return 0, ErrCaptureNotArmed
	}
	return Decode(out, cs.syms, prof)
}

// Symbols returns the raw captured symbols for diagnostics.
func (cs *CaptureSession) Symbols() []Symbol { return cs.syms }

// Capture runs one full loopback pass: arm, settle, trigger the
// transmit path, wait, decode. Returns the decoded byte count; 0 with
// ErrDecodeTimeout when nothing was captured in time.
func (cs *CaptureSession) Capture(cfg CaptureConfig, prof TimingProfile, out []byte,
	txTrigger func() error, timeoutMS uint32) (int, error) {

	if !cs.Begin(cfg) {
		return 0, ErrCaptureNotArmed
	}
	time.Sleep(SettleDelay)
	if err := txTrigger(); err != nil {
		cs.rx.Disarm()
		cs.armed = false
		return 0, err
	}
	if cs.Wait(timeoutMS) == WaitTimeout {
		return 0, ErrDecodeTimeout
	}
	return cs.DecodeInto(prof, out)
}
