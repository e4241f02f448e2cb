package core

// SymbolFIFO is a fixed circular buffer of captured symbols. The
// capture driver writes from its completion/edge context and the
// decoder drains after the session ends, so writes never allocate.
type SymbolFIFO struct {
	buf   []Symbol
	read  int
	write int
	size  int
}

// NewSymbolFIFO creates a SymbolFIFO holding up to capacity-1 symbols.
func NewSymbolFIFO(capacity int) *SymbolFIFO {
	return &SymbolFIFO{
		buf:  make([]Symbol, capacity),
		size: capacity,
	}
}

// Push appends one symbol. Returns false (dropping the symbol) when
// the buffer is full.
func (f *SymbolFIFO) Push(s Symbol) bool {
	nextWrite := (f.write + 1) % f.size
	if nextWrite == f.read {
		return false
	}
	f.buf[f.write] = s
	f.write = nextWrite
	return true
}

// Available returns the number of symbols buffered.
func (f *SymbolFIFO) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// IsEmpty returns true if no symbols are buffered.
func (f *SymbolFIFO) IsEmpty() bool {
	return f.read == f.write
}

// IsFull returns true if the next Push would drop.
func (f *SymbolFIFO) IsFull() bool {
	return (f.write+1)%f.size == f.read
}

// Drain returns all buffered symbols as a contiguous slice and empties
// the FIFO. The result may alias the FIFO's storage and is only valid
// until the next Push; callers decode before rearming.
func (f *SymbolFIFO) Drain() []Symbol {
	var out []Symbol
	if f.read <= f.write {
		out = f.buf[f.read:f.write]
	} else {
		out = make([]Symbol, 0, f.Available())
		out = append(out, f.buf[f.read:]...)
		out = append(out, f.buf[:f.write]...)
	}
	f.read = f.write
	return out
}

// Reset clears the buffer.
func (f *SymbolFIFO) Reset() {
	f.read = 0
	f.write = 0
}
