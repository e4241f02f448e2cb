package core

import "errors"

var ErrBadLaneLength = errors.New("clockless: lane length is not a record multiple")

// Lane is one logical LED strip: a GPIO identity and its ordered byte
// buffer. One color record is Record consecutive bytes (3 for RGB, 4
// for RGBW). Byte order within a record is fixed by an external
// color-order policy before the bytes reach the encoder; the codec
// never reorders.
type Lane struct {
	Pin    GPIOPin
	Bytes  []byte
	Record int
	Order  string // color order label, informational to the codec
}

// NewLane validates and returns a lane over the given byte buffer.
// The buffer length must be a whole number of records.
func NewLane(pin GPIOPin, buf []byte, record int, order string) (*Lane, error) {
	if record <= 0 {
		return nil, ErrBadRecordSize
	}
	if len(buf)%record != 0 {
		return nil, ErrBadLaneLength
	}
	return &Lane{Pin: pin, Bytes: buf, Record: record, Order: order}, nil
}

// Len returns the lane byte length.
func (l *Lane) Len() int { return len(l.Bytes) }

// Records returns the number of complete color records.
func (l *Lane) Records() int { return len(l.Bytes) / l.Record }
