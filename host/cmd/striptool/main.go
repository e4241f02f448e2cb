// striptool runs a loopback validation pass: encode a test frame,
// drive it through the multi-buffer scheduler, capture it back, decode
// it, and diff the result byte by byte.
//
// With no -port it runs against the in-memory wire simulator. With
// -port it writes the frame to an attached controller whose capture
// probe streams the measured symbols back as a framed dump.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/FastLED/clockless/config"
	"github.com/FastLED/clockless/core"
	"github.com/FastLED/clockless/host/serial"
	"github.com/FastLED/clockless/probe"
	"github.com/FastLED/clockless/sim"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	portDevice = flag.String("port", "", "serial device of a capture probe (default: simulate)")
	baud       = flag.Int("baud", 115200, "serial baud rate")
	verbose    = flag.Bool("v", false, "log per-chunk scheduling detail")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("striptool: %v", err)
	}

	failed := false
	for i, strip := range cfg.Strips {
		if err := validateStrip(cfg, strip); err != nil {
			log.Printf("strip %d (pin %d): FAIL: %v", i, strip.Pin, err)
			failed = true
			continue
		}
		log.Printf("strip %d (pin %d, %d LEDs, %s/%s): OK",
			i, strip.Pin, strip.Leds, strip.Chipset, strip.ColorOrder)
	}
	if failed {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		// One 64-LED WS2812 strip on pin 2, everything defaulted.
		return config.Load([]byte(`{"strips": [{"pin": 2, "leds": 64}]}`))
	}
	data, err := os.ReadFile(*configPath)
	if err != nil {
		return nil, err
	}
	return config.Load(data)
}

// testFrame builds a ramp pattern exercising every bit position.
func testFrame(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte((i*37 + 11) & 0xFF)
	}
	return out
}

func validateStrip(cfg *config.Config, strip config.StripConfig) error {
	prof, err := strip.Profile()
	if err != nil {
		return err
	}

	src := testFrame(strip.Bytes())
	if strip.Brightness < 255 {
		scaler := core.NewScaler(uint8(strip.Brightness), len(src))
		scaler.Apply(src, src)
	}

	var got []byte
	var n int
	if *portDevice != "" {
		got, n, err = probeLoopback(strip, prof, src)
	} else {
		got, n, err = simLoopback(cfg.Channel, strip, prof, src)
	}
	if err != nil {
		return err
	}

	mismatches := core.CompareFrames(src, got[:n], strip.RecordSize)
	if len(mismatches) == 0 {
		return nil
	}
	for _, m := range mismatches {
		log.Printf("  mismatch: %v", m)
	}
	if *verbose {
		for _, ev := range core.RefillTrace() {
			log.Printf("  trace: type=%d slot=%d chunk=%d off=%d len=%d",
				ev.EventType, ev.Slot, ev.Chunk, ev.Offset, ev.Length)
		}
	}
	return fmt.Errorf("%d of %d bytes corrupted", len(mismatches), len(src))
}

// simLoopback runs the transmission through the in-memory wire.
func simLoopback(ch config.ChannelConfig, strip config.StripConfig,
	prof core.TimingProfile, src []byte) ([]byte, int, error) {

	wire := sim.NewWire(prof, uint32(ch.PulseClock))
	unit := sim.NewTransferUnit(wire, ch.QueueDepth)
	ring, err := core.NewRingBufferSet(ch.RingBuffers, ch.BufferBytes, ch.QueueDepth)
	if err != nil {
		return nil, 0, err
	}
	sched, err := core.NewScheduler(ring, unit)
	if err != nil {
		return nil, 0, err
	}

	session := core.NewCaptureSession(sim.NewCapture(wire), len(src)*8+8)
	out := make([]byte, len(src))
	n, err := session.Capture(core.CaptureConfig{Pin: core.GPIOPin(strip.Pin)},
		prof, out, func() error { return sched.Transmit(src, strip.RecordSize) },
		uint32(ch.TimeoutMS))
	return out, n, err
}

// probeLoopback sends the frame to hardware and reads the probe's
// symbol dump back.
func probeLoopback(strip config.StripConfig, prof core.TimingProfile,
	src []byte) ([]byte, int, error) {

	port, err := serial.Open(&serial.Config{
		Device:      *portDevice,
		Baud:        *baud,
		ReadTimeout: 2000,
	})
	if err != nil {
		return nil, 0, err
	}
	defer port.Close()

	if _, err := port.Write(src); err != nil {
		return nil, 0, fmt.Errorf("sending frame: %w", err)
	}
	if err := port.Flush(); err != nil {
		return nil, 0, err
	}

	syms, err := probe.ReadSymbolDump(port)
	if err != nil {
		return nil, 0, fmt.Errorf("reading symbol dump: %w", err)
	}
	if *verbose {
		log.Printf("  probe returned %d symbols", len(syms))
	}

	out := make([]byte, len(src))
	n, err := core.Decode(out, syms, prof)
	return out, n, err
}
