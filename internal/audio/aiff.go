package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

var (
	errNotAIFF        = errors.New("not a valid aiff file")
	errAIFFBitDepth   = errors.New("unsupported aiff bit depth")
	errAIFFNoChannels = errors.New("aiff file has no channels")
)

// aiffReader is the part of aiff.Decoder the streamer needs.
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// aiffStreamer adapts go-audio's integer PCM reader to beep.Streamer.
type aiffStreamer struct {
	dec      aiffReader
	format   *goaudio.Format
	channels int
	scale    float64
	intBuf   *goaudio.IntBuffer
	pending  []int
	err      error
	done     bool
}

func decodeAIFF(r io.ReadSeeker) (beep.StreamCloser, beep.Format, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, beep.Format{}, errNotAIFF
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, beep.Format{}, errAIFFNoChannels
	}

	var scale float64
	switch dec.BitDepth {
	case 8, 16, 24, 32:
		scale = float64(int64(1) << (dec.BitDepth - 1))
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %d", errAIFFBitDepth, dec.BitDepth)
	}

	s := &aiffStreamer{
		dec:      dec,
		format:   format,
		channels: format.NumChannels,
		scale:    scale,
	}
	bf := beep.Format{
		SampleRate:  beep.SampleRate(format.SampleRate),
		NumChannels: 2,
		Precision:   int(dec.BitDepth) / 8,
	}
	return s, bf, nil
}

func (s *aiffStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if len(s.pending) < s.channels {
			if !s.fill(len(samples) - n) {
				break
			}
			continue
		}
		l := float64(s.pending[0]) / s.scale
		r := l
		if s.channels > 1 {
			r = float64(s.pending[1]) / s.scale
		}
		samples[n] = [2]float64{l, r}
		s.pending = s.pending[s.channels:]
		n++
	}
	return n, n > 0
}

// fill reads roughly frames frames from the decoder into pending.
func (s *aiffStreamer) fill(frames int) bool {
	if s.done {
		return false
	}
	want := frames * s.channels
	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, want), Format: s.format}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	if n == 0 {
		s.done = true
		return false
	}
	s.pending = append(s.pending[:0], s.intBuf.Data[:n]...)
	return true
}

func (s *aiffStreamer) Err() error   { return s.err }
func (s *aiffStreamer) Close() error { return nil }
