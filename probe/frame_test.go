package probe

import (
	"bytes"
	"testing"

	"github.com/FastLED/clockless/core"
)

func dumpSymbols() []core.Symbol {
	return []core.Symbol{
		{HighNS: 580, LowNS: 645},
		{HighNS: 225, LowNS: 1000},
		{HighNS: 580, LowNS: 280645},
	}
}

func TestSymbolDumpRoundTrip(t *testing.T) {
	frame := EncodeSymbolDump(dumpSymbols())
	syms, err := DecodeSymbolDump(frame)
	if err != nil {
		t.Fatalf("DecodeSymbolDump failed: %v", err)
	}
	if len(syms) != 3 {
		t.Fatalf("decoded %d symbols, want 3", len(syms))
	}
	for i, want := range dumpSymbols() {
		if syms[i] != want {
			t.Errorf("symbol %d = %+v, want %+v", i, syms[i], want)
		}
	}
}

func TestSymbolDumpCRC(t *testing.T) {
	frame := EncodeSymbolDump(dumpSymbols())
	frame[5] ^= 0x01
	if _, err := DecodeSymbolDump(frame); err != ErrBadCRC {
		t.Errorf("expected ErrBadCRC on corrupted body, got %v", err)
	}
}

func TestSymbolDumpBadSync(t *testing.T) {
	if _, err := DecodeSymbolDump([]byte{0x00, 0x01, 0x02, 0x03}); err != ErrBadSync {
		t.Errorf("expected ErrBadSync, got %v", err)
	}
}

func TestReadSymbolDumpSkipsGarbage(t *testing.T) {
	var stream bytes.Buffer
	stream.Write([]byte{0xDE, 0xAD, 0x00}) // line noise before the frame
	stream.Write(EncodeSymbolDump(dumpSymbols()))

	syms, err := ReadSymbolDump(&stream)
	if err != nil {
		t.Fatalf("ReadSymbolDump failed: %v", err)
	}
	if len(syms) != 3 {
		t.Errorf("decoded %d symbols, want 3", len(syms))
	}
}

func TestReadSymbolDumpEmptyDump(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(EncodeSymbolDump(nil))
	syms, err := ReadSymbolDump(&stream)
	if err != nil {
		t.Fatalf("ReadSymbolDump failed: %v", err)
	}
	if len(syms) != 0 {
		t.Errorf("decoded %d symbols from an empty dump", len(syms))
	}
}

func TestCRC16KnownValues(t *testing.T) {
	// Stability check: the probe firmware computes the same function.
	if got := CRC16(nil); got != 0xFFFF {
		t.Errorf("CRC16(empty) = 0x%04X, want 0xFFFF", got)
	}
	a := CRC16([]byte{0x01, 0x02, 0x03})
	b := CRC16([]byte{0x01, 0x02, 0x03})
	if a != b {
		t.Error("CRC16 must be deterministic")
	}
	if CRC16([]byte{0x01, 0x02, 0x03}) == CRC16([]byte{0x03, 0x02, 0x01}) {
		t.Error("CRC16 should distinguish byte order")
	}
}
