package spectrum

import "fmt"

// Bins is the number of magnitudes in a Snapshot. It must match the size of
// the AudioFreq uniform array declared by the shader.
const Bins = 64

// Snapshot holds the current normalized magnitude of the lowest Bins
// frequency bands, each in [0, 1].
type Snapshot [Bins]float32

// FromBytes rescales raw 8-bit analyser output to [0, 1].
func FromBytes(raw []byte) (Snapshot, error) {
	var s Snapshot
	if len(raw) != Bins {
		return s, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(raw), Bins)
	}
	for i, b := range raw {
		s[i] = float32(b) / 255
	}
	return s, nil
}

// Average returns the arithmetic mean of all magnitudes.
func (s Snapshot) Average() float32 {
	var sum float32
	for _, v := range s {
		sum += v
	}
	return sum / Bins
}

// Slice returns the magnitudes as a slice suitable for a float array uniform.
func (s Snapshot) Slice() []float32 {
	out := make([]float32, Bins)
	copy(out, s[:])
	return out
}
