package probe

import "testing"

func TestVLQRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 225, 580, 280000, 0xFFFFFFFF}
	for _, v := range values {
		enc := AppendVLQUint(nil, v)
		data := enc
		got, err := DecodeVLQUint(&data)
		if err != nil {
			t.Errorf("decode of %d failed: %v", v, err)
			continue
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
		if len(data) != 0 {
			t.Errorf("decode of %d left %d trailing bytes", v, len(data))
		}
	}
}

func TestVLQCompactness(t *testing.T) {
	if n := len(AppendVLQUint(nil, 0x7F)); n != 1 {
		t.Errorf("0x7F encoded in %d bytes, want 1", n)
	}
	if n := len(AppendVLQUint(nil, 0x80)); n != 2 {
		t.Errorf("0x80 encoded in %d bytes, want 2", n)
	}
	// Typical symbol durations stay small on the wire.
	if n := len(AppendVLQUint(nil, 1225)); n != 2 {
		t.Errorf("1225 encoded in %d bytes, want 2", n)
	}
}

func TestVLQDecodeEmpty(t *testing.T) {
	data := []byte{}
	if _, err := DecodeVLQUint(&data); err != ErrBufferTooSmall {
		t.Errorf("expected ErrBufferTooSmall, got %v", err)
	}
}

func TestVLQDecodeTruncated(t *testing.T) {
	data := []byte{0x81} // continuation bit with nothing after
	if _, err := DecodeVLQUint(&data); err != ErrBufferTooSmall {
		t.Errorf("expected ErrBufferTooSmall, got %v", err)
	}
}

func TestVLQDecodeOverlong(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}
	if _, err := DecodeVLQUint(&data); err != ErrInvalidVLQ {
		t.Errorf("expected ErrInvalidVLQ for 6-byte VLQ, got %v", err)
	}
}
