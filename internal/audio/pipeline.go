package audio

import (
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

// Pipeline is one decoded file wired as source -> ctrl -> analyser -> output.
// It owns the decoded buffer; the analyser only observes samples.
type Pipeline struct {
	name     string
	buffer   *beep.Buffer
	source   beep.StreamSeeker
	ctrl     *beep.Ctrl
	analyser *spectrum.Analyser

	ended   chan struct{}
	endOnce sync.Once
}

func newPipeline(name string, buf *beep.Buffer, params spectrum.Params) (*Pipeline, error) {
	src := buf.Streamer(0, buf.Len())
	p := &Pipeline{
		name:   name,
		buffer: buf,
		source: src,
		ctrl:   &beep.Ctrl{Streamer: src},
		ended:  make(chan struct{}),
	}

	// Keep feeding silence after the file ends so the analyser decays to
	// zero instead of freezing on the last frame.
	chain := beep.Seq(p.ctrl, beep.Callback(p.markEnded), beep.Silence(-1))
	a, err := spectrum.NewAnalyser(chain, params)
	if err != nil {
		return nil, err
	}
	p.analyser = a
	return p, nil
}

func (p *Pipeline) markEnded() {
	p.endOnce.Do(func() { close(p.ended) })
}

// Ended is closed once the source has played to the end.
func (p *Pipeline) Ended() <-chan struct{} { return p.ended }

func (p *Pipeline) Name() string { return p.name }

// Duration is the length of the decoded audio.
func (p *Pipeline) Duration() time.Duration {
	return p.buffer.Format().SampleRate.D(p.buffer.Len())
}

// streamer is what gets handed to the output.
func (p *Pipeline) streamer() beep.Streamer { return p.analyser }

// release drops the decoded samples so a torn down pipeline does not pin
// them while a late speaker callback still references it.
func (p *Pipeline) release() {
	p.ctrl.Streamer = nil
	p.markEnded()
}
