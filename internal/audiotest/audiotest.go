// Package audiotest provides fixtures shared by the audio and game tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"

	"github.com/faiface/beep"
)

// Sine returns n mono 16-bit samples of a sine wave at freq Hz.
func Sine(rate, n int, freq, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		t := float64(i) / float64(rate)
		out[i] = int16(amp * 32767 * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

// WAV encodes interleaved 16-bit PCM samples as a canonical 44-byte header
// RIFF/WAVE file.
func WAV(rate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	dataSize := uint32(len(samples) * 2)
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(rate))
	binary.Write(buf, binary.LittleEndian, uint32(rate*channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

// Output is an in-memory audio output. Nothing is pulled from played
// streamers until Pull is called.
type Output struct {
	Rate beep.SampleRate

	lock sync.Mutex // held between Lock and Unlock, and during Pull

	mu      sync.Mutex
	playing []beep.Streamer
	clears  int
}

func NewOutput(rate beep.SampleRate) *Output {
	return &Output{Rate: rate}
}

func (o *Output) SampleRate() beep.SampleRate { return o.Rate }

func (o *Output) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.playing = append(o.playing, s)
}

func (o *Output) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.playing = nil
	o.clears++
}

func (o *Output) Lock()   { o.lock.Lock() }
func (o *Output) Unlock() { o.lock.Unlock() }

// Playing returns how many streamers are currently mixed.
func (o *Output) Playing() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.playing)
}

// Clears returns how many times Clear was called.
func (o *Output) Clears() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.clears
}

// Pull streams n frames from every playing streamer, the way the speaker
// goroutine would, and discards the result.
func (o *Output) Pull(n int) {
	o.mu.Lock()
	playing := append([]beep.Streamer(nil), o.playing...)
	o.mu.Unlock()

	o.lock.Lock()
	defer o.lock.Unlock()
	buf := make([][2]float64, 512)
	for _, s := range playing {
		for left := n; left > 0; {
			m := len(buf)
			if m > left {
				m = left
			}
			got, ok := s.Stream(buf[:m])
			if !ok || got == 0 {
				break
			}
			left -= got
		}
	}
}
