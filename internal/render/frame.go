package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

// Frame is everything one draw call needs.
type Frame struct {
	Elapsed  float32 // seconds since the first tick
	Width    int     // surface size in device pixels
	Height   int
	Spectrum spectrum.Snapshot
	AudioAvg float32
}

// Uniforms returns the shader inputs for f. AudioFreq always has exactly
// spectrum.Bins entries, matching the array declared in boxes.kage.
func (f *Frame) Uniforms() map[string]any {
	return map[string]any{
		uniformResolution: []float32{float32(f.Width), float32(f.Height)},
		uniformTime:       f.Elapsed,
		uniformAudioFreq:  f.Spectrum.Slice(),
		uniformAudioAvg:   f.AudioAvg,
	}
}

// QuadVertices returns two triangles covering (0,0)-(w,h).
func QuadVertices(w, h int) []ebiten.Vertex {
	fw, fh := float32(w), float32(h)
	corners := [6][2]float32{
		{0, fh}, {fw, fh}, {0, 0},
		{0, 0}, {fw, fh}, {fw, 0},
	}
	vs := make([]ebiten.Vertex, len(corners))
	for i, c := range corners {
		vs[i] = ebiten.Vertex{
			DstX: c[0], DstY: c[1],
			SrcX: c[0], SrcY: c[1],
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}
	return vs
}

// quadIndices draws the six vertices in order.
var quadIndices = []uint16{0, 1, 2, 3, 4, 5}
