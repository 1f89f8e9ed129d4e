// Package smartencoder selects a video encoder for a four-character codec
// tag with fallback support.
package smartencoder

import (
	"errors"
	"fmt"

	"github.com/user/bagannotate/pkg/adapters/h264encoder"
	"github.com/user/bagannotate/pkg/adapters/mjpegencoder"
	"github.com/user/bagannotate/pkg/ports"
)

// Backend represents the encoding backend used.
type Backend string

const (
	// BackendGo represents the pure Go MJPEG muxer.
	BackendGo Backend = "go"
	// BackendFFmpeg represents FFmpeg-based encoding.
	BackendFFmpeg Backend = "ffmpeg"
)

// Info contains information about the selected encoder.
type Info struct {
	// FourCC is the tag the selected encoder writes.
	FourCC string
	// Backend is the encoding backend being used.
	Backend Backend
	// RequestedFourCC is the tag that was originally requested.
	RequestedFourCC string
	// FallbackUsed indicates whether a fallback occurred.
	FallbackUsed bool
}

// Options configures the smart encoder behavior.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// AllowFallback enables fallback to MJPEG when H.264 is not available.
	AllowFallback bool
	// Logger is used to log fallback warnings.
	Logger ports.Logger
}

var (
	// ErrNoEncoderAvailable is returned when no encoder is available for the tag.
	ErrNoEncoderAvailable = errors.New("smartencoder: no encoder available")

	// ErrUnknownTag is returned for tags no encoder produces.
	ErrUnknownTag = errors.New("smartencoder: unknown codec tag")
)

// Tags lists the codec tags that can be requested.
func Tags() []string {
	return []string{mjpegencoder.FourCC, h264encoder.FourCC}
}

// New creates a video encoder for the requested tag.
//
// "jpeg" always uses the pure Go MJPEG muxer. "avc1" uses ffmpeg and, when
// ffmpeg is missing and AllowFallback is set, falls back to "jpeg".
func New(tag string, opts Options) (ports.VideoEncoder, Info, error) {
	if opts.FFmpegPath != "" {
		h264encoder.SetFFmpegPath(opts.FFmpegPath)
	}

	info := Info{RequestedFourCC: tag}

	switch tag {
	case mjpegencoder.FourCC:
		info.FourCC = mjpegencoder.FourCC
		info.Backend = BackendGo
		return mjpegencoder.New(), info, nil
	case h264encoder.FourCC:
		return selectH264Encoder(opts, info)
	default:
		return nil, Info{}, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
}

func selectH264Encoder(opts Options, info Info) (ports.VideoEncoder, Info, error) {
	if h264encoder.IsFFmpegAvailable() {
		info.FourCC = h264encoder.FourCC
		info.Backend = BackendFFmpeg
		return h264encoder.New(), info, nil
	}

	if !opts.AllowFallback {
		return nil, Info{}, fmt.Errorf("%w: %s requires ffmpeg", ErrNoEncoderAvailable, info.RequestedFourCC)
	}

	if opts.Logger != nil {
		opts.Logger.Warn("%s encoder not available, falling back to %s", info.RequestedFourCC, mjpegencoder.FourCC)
	}

	info.FourCC = mjpegencoder.FourCC
	info.Backend = BackendGo
	info.FallbackUsed = true
	return mjpegencoder.New(), info, nil
}

// IsH264Available checks if FFmpeg-based H.264 encoding is available.
func IsH264Available() bool {
	return h264encoder.IsFFmpegAvailable()
}
