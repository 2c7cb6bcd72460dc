package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

// DefaultResampleQuality is passed to beep.Resample when a file's rate
// differs from the output rate.
const DefaultResampleQuality = 4

// Status describes what the player is doing.
type Status struct {
	Name     string
	Position time.Duration
	Duration time.Duration
	Paused   bool
	Playing  bool
	Ended    bool
}

// Player turns selected files into a live spectrum. At most one pipeline is
// active; loading a new file stops and replaces the previous one.
type Player struct {
	out     Output
	quality int

	mu      sync.Mutex
	params  spectrum.Params
	current *Pipeline
	gen     uint64
	ready   chan struct{}
	closed  bool
}

// Option configures a Player.
type Option func(*Player)

// WithAnalyser sets the analyser parameters used for new pipelines.
func WithAnalyser(p spectrum.Params) Option {
	return func(pl *Player) { pl.params = p }
}

// WithResampleQuality sets the beep.Resample quality (1 to 64).
func WithResampleQuality(q int) Option {
	return func(pl *Player) { pl.quality = q }
}

// NewPlayer creates a player that plays on out.
func NewPlayer(out Output, opts ...Option) (*Player, error) {
	p := &Player{
		out:     out,
		quality: DefaultResampleQuality,
		params:  spectrum.DefaultParams(),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.params.Validate(); err != nil {
		return nil, err
	}
	if p.quality < 1 || p.quality > 64 {
		return nil, fmt.Errorf("resample quality %d not in [1, 64]", p.quality)
	}
	return p, nil
}

// Load reads and decodes r, then replaces the active pipeline with it and
// starts playback. If decoding fails the active pipeline keeps playing and a
// *DecodeError is returned. If another Load started while this one was
// decoding, the result is dropped and ErrSuperseded is returned.
func (p *Player) Load(ctx context.Context, name string, r io.Reader) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.gen++
	gen := p.gen
	params := p.params
	select {
	case <-p.ready:
		p.ready = make(chan struct{})
	default:
	}
	ready := p.ready
	p.mu.Unlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	log.Printf("decoding %s (%d bytes)", name, len(data))
	buf, err := Decode(ctx, name, data, p.out.SampleRate(), p.quality)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			log.Printf("decode failed: %v", err)
		}
		return err
	}

	pl, err := newPipeline(name, buf, params)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if gen != p.gen {
		log.Printf("dropping %s: a newer file was selected", name)
		return ErrSuperseded
	}

	p.teardownLocked()
	p.current = pl
	p.out.Play(pl.streamer())
	close(ready)
	log.Printf("playing %s (%s)", name, pl.Duration().Round(time.Second))
	return nil
}

// LoadAsync runs Load on its own goroutine. The returned channel receives
// exactly one value.
func (p *Player) LoadAsync(ctx context.Context, name string, r io.Reader) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- p.Load(ctx, name, r)
	}()
	return done
}

// Ready returns a channel that is closed once the most recently started
// Load is playing. Each Load replaces an already closed channel with a new
// one; a Load that fails leaves it open.
func (p *Player) Ready() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Sample returns the current magnitudes of the lowest spectrum.Bins bands.
// Before any file is loaded it returns the zero snapshot.
func (p *Player) Sample() spectrum.Snapshot {
	p.mu.Lock()
	cur := p.current
	p.mu.Unlock()
	if cur == nil {
		return spectrum.Snapshot{}
	}

	var raw [spectrum.Bins]byte
	cur.analyser.ByteFrequencyData(raw[:])
	s, err := spectrum.FromBytes(raw[:])
	if err != nil {
		return spectrum.Snapshot{}
	}
	return s
}

// SetAnalyser changes smoothing and decibel range on the active pipeline and
// on every pipeline created afterwards. A different FFT size only takes
// effect for the next file.
func (p *Player) SetAnalyser(params spectrum.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = params
	if p.current == nil {
		return nil
	}
	live := params
	live.FFTSize = p.current.analyser.FrequencyBinCount() * 2
	return p.current.analyser.SetParams(live)
}

// TogglePause pauses or resumes playback and reports whether the player is
// now paused. It does nothing when nothing is loaded.
func (p *Player) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return false
	}
	p.out.Lock()
	p.current.ctrl.Paused = !p.current.ctrl.Paused
	paused := p.current.ctrl.Paused
	p.out.Unlock()
	return paused
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur := p.current
	if cur == nil {
		return Status{}
	}

	st := Status{
		Name:     cur.name,
		Duration: cur.Duration(),
		Playing:  true,
	}
	select {
	case <-cur.ended:
		st.Ended = true
		st.Playing = false
		st.Position = st.Duration
	default:
		p.out.Lock()
		pos := cur.source.Position()
		st.Paused = cur.ctrl.Paused
		p.out.Unlock()
		st.Position = p.out.SampleRate().D(pos)
	}
	return st
}

// Close stops playback. Later loads fail with ErrClosed.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
	p.closed = true
}

func (p *Player) teardownLocked() {
	if p.current == nil {
		return
	}
	p.out.Clear()
	p.out.Lock()
	p.current.release()
	p.out.Unlock()
	log.Printf("stopped %s", p.current.name)
	p.current = nil
}
