package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/faiface/beep"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	DefaultFFTSize     = 256
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

// Params controls how raw FFT magnitudes are turned into byte levels.
type Params struct {
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
}

// DefaultParams returns the analyser settings the visualizer is tuned for.
func DefaultParams() Params {
	return Params{
		FFTSize:     DefaultFFTSize,
		Smoothing:   DefaultSmoothing,
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
	}
}

// Validate reports whether p can drive an analyser feeding a Snapshot.
func (p Params) Validate() error {
	if p.FFTSize < 32 || p.FFTSize > 32768 || p.FFTSize&(p.FFTSize-1) != 0 {
		return fmt.Errorf("%w: fft size %d is not a power of two in [32, 32768]", ErrInvalidParams, p.FFTSize)
	}
	if p.FFTSize/2 < Bins {
		return fmt.Errorf("%w: fft size %d gives %d bins, need %d", ErrBinCount, p.FFTSize, p.FFTSize/2, Bins)
	}
	if p.Smoothing < 0 || p.Smoothing >= 1 {
		return fmt.Errorf("%w: smoothing %v not in [0, 1)", ErrInvalidParams, p.Smoothing)
	}
	if p.MinDecibels >= p.MaxDecibels {
		return fmt.Errorf("%w: min decibels %v must be below max %v", ErrInvalidParams, p.MinDecibels, p.MaxDecibels)
	}
	return nil
}

// Analyser wraps a beep.Streamer and records the last FFTSize mono samples
// into a ring buffer so the renderer can read a spectrum of recently played
// audio. Samples pass through unchanged.
type Analyser struct {
	Source beep.Streamer

	mu        sync.RWMutex
	buffer    []float64
	nextIndex int

	// state below is owned by the reader
	smu    sync.Mutex
	params Params
	window []float64
	frame  []float64
	smooth []float64
}

// NewAnalyser wraps src. It returns an error if p cannot produce Bins bins.
func NewAnalyser(src beep.Streamer, p Params) (*Analyser, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Analyser{
		Source: src,
		buffer: make([]float64, p.FFTSize),
		params: p,
		window: window.Blackman(p.FFTSize),
		frame:  make([]float64, p.FFTSize),
		smooth: make([]float64, p.FFTSize/2),
	}, nil
}

func (a *Analyser) Stream(samples [][2]float64) (int, bool) {
	n, ok := a.Source.Stream(samples)
	if n > 0 {
		a.mu.Lock()
		for i := 0; i < n; i++ {
			a.buffer[a.nextIndex] = (samples[i][0] + samples[i][1]) * 0.5
			a.nextIndex++
			if a.nextIndex >= len(a.buffer) {
				a.nextIndex = 0
			}
		}
		a.mu.Unlock()
	}
	return n, ok
}

func (a *Analyser) Err() error { return a.Source.Err() }

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int {
	a.smu.Lock()
	defer a.smu.Unlock()
	return len(a.smooth)
}

// SetParams changes smoothing and the decibel range. The FFT size is fixed
// for the lifetime of the analyser.
func (a *Analyser) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	a.smu.Lock()
	defer a.smu.Unlock()
	if p.FFTSize != a.params.FFTSize {
		return fmt.Errorf("%w: fft size cannot change from %d to %d", ErrInvalidParams, a.params.FFTSize, p.FFTSize)
	}
	a.params = p
	return nil
}

// ByteFrequencyData fills dst with the current magnitude of each frequency
// bin scaled to [0, 255]. Only min(len(dst), FrequencyBinCount()) entries
// are written.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.smu.Lock()
	defer a.smu.Unlock()

	a.copyFrame()
	for i := range a.frame {
		a.frame[i] *= a.window[i]
	}
	spectrum := fft.FFTReal(a.frame)

	size := float64(len(a.frame))
	tau := a.params.Smoothing
	for k := range a.smooth {
		mag := cmplx.Abs(spectrum[k]) / size
		a.smooth[k] = tau*a.smooth[k] + (1-tau)*mag
	}

	n := len(dst)
	if n > len(a.smooth) {
		n = len(a.smooth)
	}
	scale := 255 / (a.params.MaxDecibels - a.params.MinDecibels)
	for k := 0; k < n; k++ {
		dst[k] = toByte(a.smooth[k], a.params.MinDecibels, scale)
	}
}

// copyFrame copies the ring buffer into a.frame in chronological order.
func (a *Analyser) copyFrame() {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := copy(a.frame, a.buffer[a.nextIndex:])
	copy(a.frame[n:], a.buffer[:a.nextIndex])
}

func toByte(mag, minDB, scale float64) byte {
	if mag <= 0 {
		return 0
	}
	v := math.Floor(scale * (20*math.Log10(mag) - minDB))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
