package spectrum

import "errors"

var (
	ErrLengthMismatch = errors.New("spectrum: magnitude count does not match shader array size")
	ErrBinCount       = errors.New("spectrum: fft size yields fewer bins than the snapshot needs")
	ErrInvalidParams  = errors.New("spectrum: invalid analyser parameters")
)
