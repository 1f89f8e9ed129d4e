package imagecodec

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is the parent of every image decoding failure.
	ErrDecode = errors.New("image decode failed")

	// ErrUnsupportedEncoding is returned for raw pixel encodings this codec cannot convert.
	ErrUnsupportedEncoding = fmt.Errorf("%w: unsupported encoding", ErrDecode)

	// ErrShortData is returned when the pixel buffer is smaller than step * height.
	ErrShortData = fmt.Errorf("%w: pixel data too short", ErrDecode)
)
