package probe

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/FastLED/clockless/core"
)

// Wire format of one symbol dump:
//
//	0x7E  sync
//	VLQ   body length in bytes
//	body: VLQ symbol count, then VLQ high_ns and VLQ low_ns per symbol
//	CRC16 over the body, big endian
const FrameSync = 0x7E

// MaxFrameBody bounds a body read from the wire so a corrupt length
// cannot trigger an absurd allocation.
const MaxFrameBody = 1 << 20

var (
	ErrBadSync  = errors.New("probe: missing frame sync byte")
	ErrBadCRC   = errors.New("probe: frame CRC mismatch")
	ErrOversize = errors.New("probe: frame body exceeds limit")
)

// EncodeSymbolDump serializes captured symbols into one framed dump.
func EncodeSymbolDump(syms []core.Symbol) []byte {
	body := AppendVLQUint(nil, uint32(len(syms)))
	for _, s := range syms {
		body = AppendVLQUint(body, s.HighNS)
		body = AppendVLQUint(body, s.LowNS)
	}
	out := []byte{FrameSync}
	out = AppendVLQUint(out, uint32(len(body)))
	out = append(out, body...)
	crc := CRC16(body)
	return append(out, byte(crc>>8), byte(crc))
}

// DecodeSymbolDump parses one complete framed dump.
func DecodeSymbolDump(frame []byte) ([]core.Symbol, error) {
	if len(frame) < 4 || frame[0] != FrameSync {
		return nil, ErrBadSync
	}
	rest := frame[1:]
	bodyLen, err := DecodeVLQUint(&rest)
	if err != nil {
		return nil, err
	}
	if int(bodyLen) > len(rest)-2 {
		return nil, ErrBufferTooSmall
	}
	return decodeBody(rest[:bodyLen],
		uint16(rest[bodyLen])<<8|uint16(rest[bodyLen+1]))
}

// ReadSymbolDump reads one framed dump from a byte stream, skipping
// garbage before the sync byte. This is the host-side entry point for
// a serial probe link.
func ReadSymbolDump(r io.Reader) ([]core.Symbol, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == FrameSync {
			break
		}
	}

	// Body length arrives as a VLQ, one byte at a time.
	var bodyLen uint32
	for i := 0; ; i++ {
		if i == 5 {
			return nil, ErrInvalidVLQ
		}
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		bodyLen = bodyLen<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			break
		}
	}
	if bodyLen > MaxFrameBody {
		return nil, ErrOversize
	}

	buf := make([]byte, bodyLen+2)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, err
	}
	return decodeBody(buf[:bodyLen],
		uint16(buf[bodyLen])<<8|uint16(buf[bodyLen+1]))
}

func decodeBody(body []byte, wantCRC uint16) ([]core.Symbol, error) {
	if CRC16(body) != wantCRC {
		return nil, ErrBadCRC
	}
	count, err := DecodeVLQUint(&body)
	if err != nil {
		return nil, err
	}
	syms := make([]core.Symbol, 0, count)
	for i := uint32(0); i < count; i++ {
		high, err := DecodeVLQUint(&body)
		if err != nil {
			return nil, fmt.Errorf("probe: symbol %d high: %w", i, err)
		}
		low, err := DecodeVLQUint(&body)
		if err != nil {
			return nil, fmt.Errorf("probe: symbol %d low: %w", i, err)
		}
		syms = append(syms, core.Symbol{HighNS: high, LowNS: low})
	}
	return syms, nil
}
