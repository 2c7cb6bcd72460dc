package render

import (
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

// Sampler provides the magnitudes for the current tick.
type Sampler interface {
	Sample() spectrum.Snapshot
}

// Loop draws the box shader once per display refresh. It is driven by
// ebiten through Update, Draw and Layout, and keeps running until Stop.
type Loop struct {
	sampler Sampler
	now     func() time.Time
	scale   func() float64
	compile CompileFunc

	shader *ebiten.Shader
	start  time.Time
	width  int
	height int
	last   Frame

	stopped atomic.Bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithScale replaces the monitor's device scale factor.
func WithScale(scale func() float64) Option {
	return func(l *Loop) { l.scale = scale }
}

// WithCompiler replaces ebiten.NewShader.
func WithCompiler(fn CompileFunc) Option {
	return func(l *Loop) { l.compile = fn }
}

func NewLoop(s Sampler, opts ...Option) *Loop {
	l := &Loop{
		sampler: s,
		now:     time.Now,
		scale:   func() float64 { return ebiten.Monitor().DeviceScaleFactor() },
		compile: ebiten.NewShader,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tick computes the frame for the given time and surface size.
func (l *Loop) Tick(now time.Time, w, h int) Frame {
	if l.start.IsZero() {
		l.start = now
	}
	f := Frame{
		Elapsed:  float32(now.Sub(l.start).Seconds()),
		Spectrum: l.sampler.Sample(),
	}
	f.AudioAvg = f.Spectrum.Average()
	l.resize(w, h)
	f.Width, f.Height = l.width, l.height
	l.last = f
	return f
}

func (l *Loop) resize(w, h int) {
	if w == l.width && h == l.height {
		return
	}
	log.Printf("surface resized to %dx%d", w, h)
	l.width, l.height = w, h
}

// Update builds the shader on first use. It returns ebiten.Termination once
// Stop has been called, and a *ShaderBuildError if the shader is invalid.
func (l *Loop) Update() error {
	if l.stopped.Load() {
		return ebiten.Termination
	}
	if l.shader != nil {
		return nil
	}
	s, err := compile(l.compile, "boxes.kage", boxesSource)
	if err != nil {
		return err
	}
	l.shader = s
	return nil
}

// Draw renders one frame over the whole screen with a single draw call.
func (l *Loop) Draw(screen *ebiten.Image) {
	if l.shader == nil || l.stopped.Load() {
		return
	}
	b := screen.Bounds()
	f := l.Tick(l.now(), b.Dx(), b.Dy())
	screen.DrawTrianglesShader(QuadVertices(f.Width, f.Height), quadIndices, l.shader, &ebiten.DrawTrianglesShaderOptions{
		Uniforms: f.Uniforms(),
	})
}

// Layout sizes the screen in device pixels.
func (l *Loop) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := l.scale()
	if s <= 0 {
		s = 1
	}
	return int(math.Ceil(float64(outsideWidth) * s)), int(math.Ceil(float64(outsideHeight) * s))
}

// Stop ends the loop after the current tick. It is safe to call from any
// goroutine.
func (l *Loop) Stop() { l.stopped.Store(true) }

func (l *Loop) Stopped() bool { return l.stopped.Load() }

// Reset restarts elapsed time at the next tick, for when a new source
// replaces the previous one.
func (l *Loop) Reset() { l.start = time.Time{} }

// Last returns the most recently computed frame.
func (l *Loop) Last() Frame { return l.last }
