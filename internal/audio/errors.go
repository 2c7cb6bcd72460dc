package audio

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyAudio        = errors.New("audio contains no samples")
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrSuperseded        = errors.New("load superseded by a newer file")
	ErrClosed            = errors.New("player is closed")
)

// DecodeError reports a file that could not be turned into samples.
type DecodeError struct {
	Name   string
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == FormatUnknown {
		return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("decode %s (%s): %v", e.Name, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
