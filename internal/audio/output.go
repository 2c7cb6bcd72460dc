package audio

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is the device streamers are played on. It plays the role of the
// audio context: a single instance is created at startup and shared by
// reference with whatever needs to play sound.
type Output interface {
	SampleRate() beep.SampleRate
	// Play starts s. Multiple streamers are mixed.
	Play(s beep.Streamer)
	// Clear stops everything currently playing.
	Clear()
	// Lock and Unlock guard streamer state against the playback goroutine.
	Lock()
	Unlock()
}

// Speaker is an Output backed by the system audio device.
type Speaker struct {
	rate beep.SampleRate
}

// NewSpeaker initializes the audio device at rate with a buffer of the given
// duration.
func NewSpeaker(rate beep.SampleRate, buffer time.Duration) (*Speaker, error) {
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return nil, err
	}
	return &Speaker{rate: rate}, nil
}

func (s *Speaker) SampleRate() beep.SampleRate { return s.rate }
func (s *Speaker) Play(st beep.Streamer)       { speaker.Play(st) }
func (s *Speaker) Clear()                      { speaker.Clear() }
func (s *Speaker) Lock()                       { speaker.Lock() }
func (s *Speaker) Unlock()                     { speaker.Unlock() }
