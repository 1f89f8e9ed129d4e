package encode

import "errors"

var (
	// ErrOutput is returned when the video cannot be produced at the requested path.
	ErrOutput = errors.New("encode: output error")

	// ErrNoFrames is returned when there is nothing to mux.
	ErrNoFrames = errors.New("encode: no frames to encode")
)
