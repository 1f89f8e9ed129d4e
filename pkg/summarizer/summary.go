package summarizer

import "time"

// Summary contains all data collected during a conversion run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Sensor log information
	Source SourceInfo

	// Frame buffer results
	Frames FrameInfo

	// Annotation table results
	Annotations AnnotationInfo

	// Video output details
	Video VideoInfo
}

// SourceInfo describes the log and the image topic that was read.
type SourceInfo struct {
	BagPath      string
	Topic        string
	MessageType  string
	MessageCount int
	DurationMs   int64
	Framerate    float64
}

// FrameInfo contains frame buffer counts.
type FrameInfo struct {
	Buffered int
	Skipped  int
}

// AnnotationInfo describes the loaded annotation table.
type AnnotationInfo struct {
	Path            string // Empty when no table was supplied
	Error           string
	Boxes           int
	PopulatedFrames int
	Burned          int // Frames with boxes drawn into the video
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	OutputPath      string
	FourCC          string
	RequestedFourCC string
	Backend         string
	FallbackUsed    bool
	FrameCount      int
	Width           int
	Height          int
	DurationMs      int
	FileSize        int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets sensor log information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithFrames sets the frame buffer counts.
func (b *Builder) WithFrames(buffered, skipped int) *Builder {
	b.summary.Frames = FrameInfo{
		Buffered: buffered,
		Skipped:  skipped,
	}
	return b
}

// WithAnnotations sets annotation information.
func (b *Builder) WithAnnotations(annotations AnnotationInfo) *Builder {
	b.summary.Annotations = annotations
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
