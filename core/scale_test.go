package core

import "testing"

func TestScalerCarriesResidual(t *testing.T) {
	// At half brightness a channel at 3 wants 1.5: truncating gives 1
	// every frame, error diffusion must alternate 1 and 2.
	s := NewScaler(128, 1)
	src := []byte{3}
	dst := make([]byte, 1)

	sum := 0
	const frames = 100
	for i := 0; i < frames; i++ {
		s.Apply(dst, src)
		sum += int(dst[0])
	}
	want := frames * 3 * 128 / 256
	if sum != want {
		t.Errorf("summed output %d over %d frames, want %d", sum, frames, want)
	}
}

func TestScalerFullBrightness(t *testing.T) {
	s := NewScaler(255, 3)
	src := []byte{255, 0, 128}
	dst := make([]byte, 3)
	s.Apply(dst, src)
	if dst[0] != 254 { // 255*255/256
		t.Errorf("dst[0] = %d, want 254", dst[0])
	}
	if dst[1] != 0 {
		t.Errorf("dst[1] = %d, want 0", dst[1])
	}
}

func TestScalerReset(t *testing.T) {
	s := NewScaler(128, 1)
	dst := make([]byte, 1)
	s.Apply(dst, []byte{3})
	s.Reset()
	s.Apply(dst, []byte{3})
	if dst[0] != 1 {
		t.Errorf("after reset first frame = %d, want truncated 1", dst[0])
	}
}

func TestScalerInPlace(t *testing.T) {
	s := NewScaler(128, 2)
	buf := []byte{100, 200}
	s.Apply(buf, buf)
	if buf[0] != 50 || buf[1] != 100 {
		t.Errorf("in-place scale gave [%d %d], want [50 100]", buf[0], buf[1])
	}
}
