// Package pattern evaluates the nested box pattern on the CPU. It computes
// the same function as the GPU shader and serves as its reference.
package pattern

import (
	"image"
	"image/color"
	"math"

	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

const (
	boxCount  = 60
	tau       = 6.28318530718
	timeScale = 0.5
	angleDiv  = 0.6
)

// RGB is a linear color with components in [0, 1].
type RGB [3]float32

var white = RGB{0.99, 0.99, 0.99}

// Shade returns the color of the pixel whose centre is at (x, y), measured
// from the bottom-left corner of a surface of size res, at elapsed seconds.
func Shade(x, y float32, res [2]float32, elapsed float32, snap *spectrum.Snapshot) RGB {
	uvx := (2*x - res[0]) / res[1]
	uvy := (2*y - res[1]) / res[1]
	t := elapsed * tau * timeScale
	avg := snap.Average()

	d := Value(uvx, uvy, t, avg, res[1])
	tint := RGB{0.1 * (avg * 5), 0.1 * (avg * 5), 0.1}
	var out RGB
	for i := range out {
		out[i] = white[i]*(1-d) + tint[i]*d
	}
	return out
}

// Value is the strongest edge among the nested boxes at (uvx, uvy), in [0, 1).
// height is the surface height in pixels and sets the edge softness.
func Value(uvx, uvy, t, avg, height float32) float32 {
	s := 1.6 * avg
	var r float32
	for i := 0; i < boxCount; i++ {
		n := float32(i) / boxCount
		anim := 2 + sin32(t*(avg/2)+n*3)
		size := s - n*s*anim

		a := (float32(i) * avg / 2.5) * tau * angleDiv
		c, sn := cos32(a), sin32(a)
		rx := uvx*c - uvy*sn
		ry := uvx*sn + uvy*c

		b := box(rx, ry, size)
		b = smoothstep(3/height, 0, b)
		if v := b * n; v > r {
			r = v
		}
	}
	return r
}

func box(x, y, r float32) float32 {
	dx := max(abs32(x)-r, 0)
	dy := max(abs32(y)-r, 0)
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

func smoothstep(e0, e1, x float32) float32 {
	t := (x - e0) / (e1 - e0)
	t = min(max(t, 0), 1)
	return t * t * (3 - 2*t)
}

func sin32(v float32) float32 { return float32(math.Sin(float64(v))) }
func cos32(v float32) float32 { return float32(math.Cos(float64(v))) }
func abs32(v float32) float32 { return float32(math.Abs(float64(v))) }

// Image renders the pattern into a w×h image.
func Image(w, h int, elapsed float32, snap *spectrum.Snapshot) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	res := [2]float32{float32(w), float32(h)}
	for row := 0; row < h; row++ {
		y := float32(h-row) - 0.5
		for col := 0; col < w; col++ {
			c := Shade(float32(col)+0.5, y, res, elapsed, snap)
			img.SetNRGBA(col, row, color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: 255})
		}
	}
	return img
}

// Icon renders a square window icon with every band at level.
func Icon(size int, level float32) *image.NRGBA {
	var snap spectrum.Snapshot
	for i := range snap {
		snap[i] = level
	}
	return Image(size, size, 0, &snap)
}

func to8(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}
