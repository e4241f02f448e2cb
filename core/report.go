package core

import "fmt"

// Mismatch locates one differing byte between a transmitted frame and
// its decoded readback. Failures are always reported with enough
// detail to find the byte and record, never as a bare boolean.
type Mismatch struct {
	Index  int  // byte offset in the frame
	Record int  // color record containing the byte
	Want   byte // transmitted value
	Got    byte // decoded value
}

func (m Mismatch) String() string {
	return fmt.Sprintf("byte %d (record %d): want 0x%02X got 0x%02X",
		m.Index, m.Record, m.Want, m.Got)
}

// LSBOnly reports whether the mismatch is confined to the least
// significant bit, the one corruption an inter-buffer gap at a record
// boundary is permitted to cause.
func (m Mismatch) LSBOnly() bool {
	return m.Want^m.Got == 0x01
}

// CompareFrames diffs a decoded frame against the transmitted source.
// got may be shorter than want (partial decode); missing bytes are
// reported with Got 0 and an index past the decoded length.
func CompareFrames(want, got []byte, record int) []Mismatch {
	var out []Mismatch
	for i := range want {
		var g byte
		if i < len(got) {
			g = got[i]
		}
		if i >= len(got) || want[i] != g {
			out = append(out, Mismatch{
				Index:  i,
				Record: i / record,
				Want:   want[i],
				Got:    g,
			})
		}
	}
	return out
}
