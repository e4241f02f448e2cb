// Package probe implements the host side of the serial capture probe:
// a small MCU wired to the strip's data line that timestamps edges and
// streams the measured symbols back over serial. Durations travel as
// variable-length quantities inside CRC-guarded frames, so a dump of
// several thousand symbols stays compact on a slow link.
package probe

import "errors"

var (
	ErrInvalidVLQ     = errors.New("probe: invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("probe: buffer too small for VLQ")
)

// AppendVLQUint appends v to dst in VLQ form: base-128 groups, most
// significant first, continuation bit on all but the last byte.
func AppendVLQUint(dst []byte, v uint32) []byte {
	if v >= 1<<28 {
		dst = append(dst, byte(v>>28)&0x7F|0x80)
	}
	if v >= 1<<21 {
		dst = append(dst, byte(v>>21)&0x7F|0x80)
	}
	if v >= 1<<14 {
		dst = append(dst, byte(v>>14)&0x7F|0x80)
	}
	if v >= 1<<7 {
		dst = append(dst, byte(v>>7)&0x7F|0x80)
	}
	return append(dst, byte(v)&0x7F)
}

// DecodeVLQUint decodes one VLQ value from the front of *data,
// advancing the slice past the consumed bytes.
func DecodeVLQUint(data *[]byte) (uint32, error) {
	if len(*data) == 0 {
		return 0, ErrBufferTooSmall
	}
	var v uint32
	for i := 0; ; i++ {
		if len(*data) == 0 {
			return 0, ErrBufferTooSmall
		}
		if i == 5 {
			return 0, ErrInvalidVLQ
		}
		c := (*data)[0]
		*data = (*data)[1:]
		v = v<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return v, nil
		}
	}
}
