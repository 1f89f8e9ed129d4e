package ports

import (
	"image"
)

// VideoEncoder abstracts video encoding operations.
// Implementations produce a complete MP4 container tagged with a fixed
// four-character codec code.
type VideoEncoder interface {
	// FourCC returns the sample entry code written into the container (e.g. "jpeg", "avc1").
	FourCC() string

	// Begin initializes the encoder with the specified dimensions and frame rate.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame encodes a single frame at the specified timestamp.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finalizes encoding and returns the video data.
	End() ([]byte, error)
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	Bitrate int // Target bitrate in kbps (0 = encoder default)
	Quality int // Codec quality: JPEG quality 1-100 for MJPEG, CRF 0-63 for H.264
}
