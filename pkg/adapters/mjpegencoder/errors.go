package mjpegencoder

import "errors"

var (
	// ErrNotInitialized is returned when encoder methods are called before Begin.
	ErrNotInitialized = errors.New("mjpegencoder: encoder not initialized")

	// ErrNoFrames is returned when End is called without any frame.
	ErrNoFrames = errors.New("mjpegencoder: no frames to encode")

	// ErrInvalidParameters is returned for non-positive dimensions or frame rates.
	ErrInvalidParameters = errors.New("mjpegencoder: invalid parameters")
)
