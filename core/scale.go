package core

// Scaler applies a brightness scale with error diffusion. Plain
// truncating scaling loses sustained fractional levels (a channel
// asking for 2.4 out of 255 renders as 2 every frame); the scaler
// carries the dropped fraction into the next frame so the average
// over time converges on the requested level.
//
// The residual state is per channel byte, so one Scaler belongs to one
// lane and must see frames of a consistent length.
type Scaler struct {
	scale    uint8
	residual []uint16
}

// NewScaler returns a scaler for the given brightness scale (255 is
// full brightness) and frame length in bytes.
func NewScaler(scale uint8, frameLen int) *Scaler {
	return &Scaler{
		scale:    scale,
		residual: make([]uint16, frameLen),
	}
}

// Scale returns the configured brightness scale.
func (s *Scaler) Scale() uint8 { return s.scale }

// SetScale changes the brightness scale. Residuals are kept; they
// remain valid error terms for the new scale.
func (s *Scaler) SetScale(scale uint8) { s.scale = scale }

// Apply scales src into dst, carrying per-channel remainders across
// calls. dst and src must both be the frame length given at creation;
// dst may alias src.
func (s *Scaler) Apply(dst, src []byte) {
	n := len(src)
	if n > len(s.residual) {
		n = len(s.residual)
	}
	for i := 0; i < n; i++ {
		v := uint16(src[i])*uint16(s.scale) + s.residual[i]
		dst[i] = byte(v >> 8)
		s.residual[i] = v & 0xFF
	}
}

// Reset clears all carried remainders.
func (s *Scaler) Reset() {
	for i := range s.residual {
		s.residual[i] = 0
	}
}
