//go:build rp2040

package main

// Capture-probe firmware. The host sends a raw frame over USB CDC;
// the firmware drives it out the LED pin through the PIO pulse engine
// while the second PIO block measures the loopback-wired sense pin,
// then streams the measured symbols back as a framed dump. Wire
// ledPin to sensePin for self-test, or clip sensePin onto the data
// line of a strip under test.

import (
	"machine"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/FastLED/clockless/core"
	"github.com/FastLED/clockless/probe"
)

const (
	ledPin   = machine.GPIO2
	sensePin = machine.GPIO3

	ledCount   = 64
	recordSize = 3
	frameBytes = ledCount * recordSize

	ringBuffers = 3
	bufferBytes = 1024

	captureTimeoutMS = 250
)

func main() {
	time.Sleep(2 * time.Second) // let USB CDC enumerate

	gpio := NewRPGPIODriver()
	core.SetGPIODriver(gpio)
	core.SetFastPinWriter(func(pin core.GPIOPin, v bool) {
		machine.Pin(pin).Set(v)
	})
	InitClock()

	prof := core.Profiles["WS2812"]

	unit, err := NewPulseUnit(rp2pio.PIO0, ledPin, prof, recordSize)
	var xfer core.TransferUnit = unit
	if err != nil {
		fb, fberr := NewFallbackUnit(ledPin, recordSize)
		if fberr != nil {
			fatal(fberr)
		}
		xfer = fb
	}

	ring, err := core.NewRingBufferSet(ringBuffers, bufferBytes, xfer.QueueDepth())
	if err != nil {
		fatal(err)
	}
	sched, err := core.NewScheduler(ring, xfer)
	if err != nil {
		fatal(err)
	}

	capture, err := NewPIOCapture(rp2pio.PIO1, gpio)
	if err != nil {
		fatal(err)
	}
	session := core.NewCaptureSession(capture, frameBytes*8+8)

	statusLED := machine.LED
	statusLED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	frame := make([]byte, frameBytes)
	decoded := make([]byte, frameBytes)
	for {
		readFull(frame)

		n, err := session.Capture(
			core.CaptureConfig{Pin: core.GPIOPin(sensePin), MaxSymbols: frameBytes * 8},
			prof, decoded,
			func() error { return sched.Transmit(frame, recordSize) },
			captureTimeoutMS)
		if err != nil {
			// Emit an empty dump so the host's read does not hang.
			machine.Serial.Write(probe.EncodeSymbolDump(nil))
			continue
		}

		// Local verdict on the LED; the host does its own diff.
		statusLED.Set(len(core.CompareFrames(frame[:n], decoded[:n], recordSize)) == 0)

		machine.Serial.Write(probe.EncodeSymbolDump(session.Symbols()))
	}
}

// readFull blocks until buf is filled from the USB CDC stream.
func readFull(buf []byte) {
	for i := 0; i < len(buf); {
		if machine.Serial.Buffered() == 0 {
			time.Sleep(100 * time.Microsecond)
			continue
		}
		b, err := machine.Serial.ReadByte()
		if err != nil {
			continue
		}
		buf[i] = b
		i++
	}
}

// fatal blinks the onboard LED forever. There is no console to
// report to before USB is attached.
func fatal(err error) {
	_ = err
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
