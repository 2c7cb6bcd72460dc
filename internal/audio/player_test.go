package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/iburimskiy/audio-boxes/internal/audiotest"
	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

const rate = 44100

func toneWAV(freq float64, seconds float64) []byte {
	return audiotest.WAV(rate, 1, audiotest.Sine(rate, int(seconds*rate), freq, 0.8))
}

func newTestPlayer(t *testing.T) (*Player, *audiotest.Output) {
	t.Helper()
	out := audiotest.NewOutput(rate)
	p, err := NewPlayer(out)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	t.Cleanup(p.Close)
	return p, out
}

func TestSampleBeforeLoad(t *testing.T) {
	p, _ := newTestPlayer(t)
	s := p.Sample()
	if len(s) != spectrum.Bins {
		t.Fatalf("len = %d, want %d", len(s), spectrum.Bins)
	}
	for i, v := range s {
		if v != 0 {
			t.Fatalf("s[%d] = %v, want 0", i, v)
		}
	}
	if st := p.Status(); st.Playing {
		t.Error("Status().Playing = true before any load")
	}
}

func TestLoadAndSample(t *testing.T) {
	p, out := newTestPlayer(t)

	// ~1378 Hz sits on bin 8 for a 256-point FFT at 44.1 kHz.
	if err := p.Load(context.Background(), "tone.wav", bytes.NewReader(toneWAV(1378.125, 1))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	select {
	case <-p.Ready():
	default:
		t.Fatal("Ready() not closed after a successful load")
	}
	if out.Playing() != 1 {
		t.Fatalf("playing = %d, want 1", out.Playing())
	}

	out.Pull(2048)
	s := p.Sample()
	if s[8] < 0.9 {
		t.Errorf("s[8] = %v, want close to 1", s[8])
	}
	for i, v := range s {
		if v < 0 || v > 1 {
			t.Errorf("s[%d] = %v out of [0, 1]", i, v)
		}
	}

	st := p.Status()
	if st.Name != "tone.wav" || !st.Playing {
		t.Errorf("Status() = %+v", st)
	}
	if st.Position <= 0 || st.Duration < 990*time.Millisecond {
		t.Errorf("position %v duration %v", st.Position, st.Duration)
	}
}

func TestDecodeErrorKeepsPipeline(t *testing.T) {
	p, out := newTestPlayer(t)
	if err := p.Load(context.Background(), "first.wav", bytes.NewReader(toneWAV(440, 0.5))); err != nil {
		t.Fatalf("Load: %v", err)
	}

	err := p.Load(context.Background(), "junk.bin", bytes.NewReader([]byte("not audio at all")))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
	if got := p.Status().Name; got != "first.wav" {
		t.Errorf("active pipeline = %q, want first.wav", got)
	}
	if out.Playing() != 1 || out.Clears() != 0 {
		t.Errorf("playing = %d clears = %d, want 1 and 0", out.Playing(), out.Clears())
	}
}

func TestDecodeErrorWhileIdle(t *testing.T) {
	p, out := newTestPlayer(t)
	err := p.Load(context.Background(), "junk.bin", bytes.NewReader([]byte("nope")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if out.Playing() != 0 {
		t.Errorf("playing = %d, want 0", out.Playing())
	}
	if s := p.Sample(); s.Average() != 0 {
		t.Errorf("idle average = %v, want 0", s.Average())
	}
}

func TestSecondLoadReplacesFirst(t *testing.T) {
	p, out := newTestPlayer(t)
	ctx := context.Background()
	if err := p.Load(ctx, "first.wav", bytes.NewReader(toneWAV(440, 0.5))); err != nil {
		t.Fatalf("Load first: %v", err)
	}
	p.mu.Lock()
	first := p.current
	p.mu.Unlock()

	out.Pull(1024)
	if err := p.Load(ctx, "second.wav", bytes.NewReader(toneWAV(880, 0.5))); err != nil {
		t.Fatalf("Load second: %v", err)
	}

	if out.Playing() != 1 {
		t.Errorf("playing = %d, want only the new pipeline", out.Playing())
	}
	if out.Clears() != 1 {
		t.Errorf("clears = %d, want 1", out.Clears())
	}
	select {
	case <-first.Ended():
	default:
		t.Error("first pipeline not torn down")
	}
	if got := p.Status().Name; got != "second.wav" {
		t.Errorf("active = %q, want second.wav", got)
	}
}

// gatedReader blocks its first Read until open is closed.
type gatedReader struct {
	r       io.Reader
	started chan struct{}
	open    chan struct{}
	once    bool
}

func (g *gatedReader) Read(b []byte) (int, error) {
	if !g.once {
		g.once = true
		close(g.started)
		<-g.open
	}
	return g.r.Read(b)
}

func TestSlowLoadIsSuperseded(t *testing.T) {
	p, _ := newTestPlayer(t)
	ctx := context.Background()

	slow := &gatedReader{
		r:       bytes.NewReader(toneWAV(440, 0.2)),
		started: make(chan struct{}),
		open:    make(chan struct{}),
	}
	slowDone := p.LoadAsync(ctx, "slow.wav", slow)
	<-slow.started

	if err := <-p.LoadAsync(ctx, "fast.wav", bytes.NewReader(toneWAV(880, 0.2))); err != nil {
		t.Fatalf("fast load: %v", err)
	}
	close(slow.open)

	if err := <-slowDone; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("slow load err = %v, want ErrSuperseded", err)
	}
	if got := p.Status().Name; got != "fast.wav" {
		t.Errorf("active = %q, want fast.wav", got)
	}
}

func TestReadyRearmsPerLoad(t *testing.T) {
	p, _ := newTestPlayer(t)
	ctx := context.Background()
	if err := p.Load(ctx, "first.wav", bytes.NewReader(toneWAV(440, 0.2))); err != nil {
		t.Fatalf("Load first: %v", err)
	}
	first := p.Ready()

	next := &gatedReader{
		r:       bytes.NewReader(toneWAV(880, 0.2)),
		started: make(chan struct{}),
		open:    make(chan struct{}),
	}
	done := p.LoadAsync(ctx, "second.wav", next)
	<-next.started

	second := p.Ready()
	if second == first {
		t.Fatal("Ready() not replaced when a new load started")
	}
	select {
	case <-second:
		t.Fatal("Ready() closed before the second file plays")
	default:
	}

	close(next.open)
	if err := <-done; err != nil {
		t.Fatalf("Load second: %v", err)
	}
	select {
	case <-second:
	default:
		t.Fatal("Ready() not closed after the second load")
	}
}

func TestTogglePause(t *testing.T) {
	p, _ := newTestPlayer(t)
	if p.TogglePause() {
		t.Error("TogglePause() with nothing loaded reported paused")
	}
	if err := p.Load(context.Background(), "tone.wav", bytes.NewReader(toneWAV(440, 0.5))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !p.TogglePause() {
		t.Error("first toggle should pause")
	}
	if !p.Status().Paused {
		t.Error("Status().Paused = false")
	}
	if p.TogglePause() {
		t.Error("second toggle should resume")
	}
}

func TestPlaybackEnds(t *testing.T) {
	p, out := newTestPlayer(t)
	if err := p.Load(context.Background(), "short.wav", bytes.NewReader(toneWAV(1378.125, 0.05))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	out.Pull(rate / 10)
	st := p.Status()
	if !st.Ended || st.Playing {
		t.Fatalf("Status() = %+v, want ended", st)
	}

	// The analyser keeps receiving silence and decays towards zero.
	for i := 0; i < 300; i++ {
		p.Sample()
	}
	if avg := p.Sample().Average(); avg != 0 {
		t.Errorf("average after end = %v, want 0", avg)
	}
}

func TestSetAnalyser(t *testing.T) {
	p, _ := newTestPlayer(t)
	params := spectrum.DefaultParams()
	params.Smoothing = 0.3
	if err := p.SetAnalyser(params); err != nil {
		t.Fatalf("SetAnalyser idle: %v", err)
	}
	if err := p.Load(context.Background(), "tone.wav", bytes.NewReader(toneWAV(440, 0.2))); err != nil {
		t.Fatalf("Load: %v", err)
	}

	params.FFTSize = 1024
	if err := p.SetAnalyser(params); err != nil {
		t.Fatalf("SetAnalyser with new fft size: %v", err)
	}

	params.FFTSize = 64
	if err := p.SetAnalyser(params); !errors.Is(err, spectrum.ErrBinCount) {
		t.Errorf("err = %v, want ErrBinCount", err)
	}
}

func TestClosedPlayer(t *testing.T) {
	p, out := newTestPlayer(t)
	if err := p.Load(context.Background(), "tone.wav", bytes.NewReader(toneWAV(440, 0.2))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	p.Close()
	if out.Playing() != 0 {
		t.Errorf("playing = %d after Close", out.Playing())
	}
	if err := p.Load(context.Background(), "again.wav", bytes.NewReader(toneWAV(440, 0.2))); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestNewPlayerRejectsBadOptions(t *testing.T) {
	out := audiotest.NewOutput(rate)
	if _, err := NewPlayer(out, WithResampleQuality(0)); err == nil {
		t.Error("quality 0 accepted")
	}
	bad := spectrum.DefaultParams()
	bad.FFTSize = 100
	if _, err := NewPlayer(out, WithAnalyser(bad)); !errors.Is(err, spectrum.ErrInvalidParams) {
		t.Errorf("err = %v, want ErrInvalidParams", err)
	}
}
