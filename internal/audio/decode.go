package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// decodeChunk is how many frames are decoded between cancellation checks.
const decodeChunk = 1 << 15

// Format identifies an audio container detected from its leading bytes.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatMP3
	FormatFLAC
	FormatVorbis
	FormatAIFF
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	case FormatFLAC:
		return "flac"
	case FormatVorbis:
		return "ogg vorbis"
	case FormatAIFF:
		return "aiff"
	}
	return "unknown"
}

// Sniff detects the container from magic bytes. The file name is not
// consulted.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 4 && string(data[:4]) == "fLaC":
		return FormatFLAC
	case len(data) >= 4 && string(data[:4]) == "OggS":
		return FormatVorbis
	case len(data) >= 12 && string(data[:4]) == "FORM" &&
		(string(data[8:12]) == "AIFF" || string(data[8:12]) == "AIFC"):
		return FormatAIFF
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 && data[1]&0x06 != 0:
		return FormatMP3
	}
	return FormatUnknown
}

func open(f Format, data []byte) (beep.StreamCloser, beep.Format, error) {
	r := bytes.NewReader(data)
	switch f {
	case FormatWAV:
		return wav.Decode(r)
	case FormatMP3:
		return mp3.Decode(io.NopCloser(r))
	case FormatFLAC:
		return flac.Decode(r)
	case FormatVorbis:
		return vorbis.Decode(io.NopCloser(r))
	case FormatAIFF:
		return decodeAIFF(r)
	}
	return nil, beep.Format{}, ErrUnsupportedFormat
}

// Decode turns an encoded file into a stereo PCM buffer at the given rate.
// Any failure to parse or read the file is returned as a *DecodeError.
func Decode(ctx context.Context, name string, data []byte, rate beep.SampleRate, quality int) (*beep.Buffer, error) {
	f := Sniff(data)
	s, format, err := open(f, data)
	if err != nil {
		return nil, &DecodeError{Name: name, Format: f, Err: err}
	}
	defer s.Close()
	if format.SampleRate <= 0 {
		return nil, &DecodeError{Name: name, Format: f, Err: fmt.Errorf("%w: %d Hz", ErrInvalidSampleRate, format.SampleRate)}
	}

	var src beep.Streamer = s
	if format.SampleRate != rate {
		src = beep.Resample(quality, format.SampleRate, rate, s)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := buf.Len()
		buf.Append(beep.Take(decodeChunk, src))
		if buf.Len()-before < decodeChunk {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, &DecodeError{Name: name, Format: f, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &DecodeError{Name: name, Format: f, Err: ErrEmptyAudio}
	}
	return buf, nil
}
