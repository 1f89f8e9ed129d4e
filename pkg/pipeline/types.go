package pipeline

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/user/bagannotate/pkg/frameindex"
	"github.com/user/bagannotate/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// FrameRecord is one decoded image of the frame buffer.
// Records are immutable once created; Index is the 0-based insertion ordinal.
type FrameRecord struct {
	Index        int
	Image        image.Image
	RelativeTime float64 // Seconds since the first buffered frame
}

// Timestamps returns the relative times of frames in buffer order.
func Timestamps(frames []FrameRecord) []float64 {
	ts := make([]float64, len(frames))
	for i, f := range frames {
		ts[i] = f.RelativeTime
	}
	return ts
}

// LogMetadata is derived once per log from its summary.
// Invariants: DurationSeconds > 0 and MessageCount > 0.
type LogMetadata struct {
	Topic           string  `yaml:"topic" json:"topic"`
	MessageType     string  `yaml:"type" json:"type"`
	MessageCount    int     `yaml:"message_count" json:"message_count"`
	DurationSeconds float64 `yaml:"duration_seconds" json:"duration_seconds"`
	Compressed      bool    `yaml:"compressed" json:"compressed"`
	Framerate       float64 `yaml:"framerate" json:"framerate"`
}

// DurationMs returns the log duration in whole milliseconds.
func (m LogMetadata) DurationMs() int64 {
	return int64(math.Round(m.DurationSeconds * 1000))
}

// =============================================================================
// Metadata Stage Types
// =============================================================================

// MetadataInput contains the log summary blob and the requested topic.
type MetadataInput struct {
	Info  []byte // YAML summary as returned by ports.SensorLog.Info
	Topic string // Image topic; empty selects the only image topic
}

// TopicSummary describes one topic listed in the log summary.
type TopicSummary struct {
	Topic     string
	Type      string
	Messages  int
	Frequency float64
}

// MetadataResult contains the resolved metadata and the full topic listing.
type MetadataResult struct {
	Metadata LogMetadata
	Topics   []TopicSummary
}

// =============================================================================
// Extract Stage Types
// =============================================================================

// ExtractInput contains parameters for buffering images from a log.
type ExtractInput struct {
	Log        ports.SensorLog
	Topic      string
	Compressed bool
}

// ExtractResult contains the buffered frames.
type ExtractResult struct {
	Frames  []FrameRecord
	Origin  time.Time // Log timestamp of Frames[0]
	Read    int       // Messages read from the topic
	Skipped int       // Messages that failed to decode
}

// =============================================================================
// Overlay Stage Types
// =============================================================================

// OverlayInput contains parameters for drawing boxes onto frames.
type OverlayInput struct {
	Frames []FrameRecord
	Index  *frameindex.Index
	Style  OverlayStyle
}

// OverlayStyle defines box rendering.
type OverlayStyle struct {
	Color       color.Color
	StrokeWidth float64
	ShowIDs     bool // Draw the box id next to each box
}

// DefaultOverlayStyle returns the red outline used by the annotator.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		Color:       color.RGBA{R: 200, G: 0, B: 0, A: 255},
		StrokeWidth: 2,
	}
}

// OverlayResult contains the annotated frames.
type OverlayResult struct {
	Frames    []FrameRecord
	Annotated int // Frames that had at least one box drawn
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for video muxing.
type EncodeInput struct {
	Frames     []FrameRecord
	FPS        float64
	OutputPath string
	Quality    int
	Bitrate    int
}

// EncodeResult describes the written video.
type EncodeResult struct {
	FourCC     string
	FrameCount int
	Width      int
	Height     int
	DurationMs int
	FileSize   int64
}
