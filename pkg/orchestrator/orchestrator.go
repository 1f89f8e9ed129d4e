// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"gopkg.in/yaml.v3"

	"github.com/user/bagannotate/pkg/annotation"
	"github.com/user/bagannotate/pkg/pipeline"
	"github.com/user/bagannotate/pkg/playback"
	"github.com/user/bagannotate/pkg/ports"
)

// ErrEmptyTopic is returned when no message of the image topic could be decoded.
var ErrEmptyTopic = errors.New("orchestrator: no decodable frames on topic")

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input
	Topic           string // Empty selects the only image topic
	AnnotationsPath string // Empty runs without annotations
	OutputPath      string

	// Overlay
	Overlay      bool
	OverlayStyle pipeline.OverlayStyle

	// Encoding
	Quality int
	Bitrate int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OverlayStyle: pipeline.DefaultOverlayStyle(),
	}
}

// AnnotationLoader loads a box annotation table.
type AnnotationLoader interface {
	Load(path string) ([]annotation.BoxRecord, error)
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	metadataStage pipeline.Stage[pipeline.MetadataInput, pipeline.MetadataResult]
	extractStage  pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult]
	overlayStage  pipeline.Stage[pipeline.OverlayInput, pipeline.OverlayResult]
	encodeStage   pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	annotations   AnnotationLoader
	sink          ports.DebugSink
	logger        ports.Logger
}

// New creates a new Orchestrator.
func New(
	metadataStage pipeline.Stage[pipeline.MetadataInput, pipeline.MetadataResult],
	extractStage pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult],
	overlayStage pipeline.Stage[pipeline.OverlayInput, pipeline.OverlayResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	annotations AnnotationLoader,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		metadataStage: metadataStage,
		extractStage:  extractStage,
		overlayStage:  overlayStage,
		encodeStage:   encodeStage,
		annotations:   annotations,
		sink:          sink,
		logger:        logger,
	}
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	// Source
	Topic        string
	MessageType  string
	MessageCount int
	DurationMs   int64
	Framerate    float64
	Compressed   bool

	// Frame buffer
	FrameCount int
	Skipped    int

	// Annotations
	HasAnnotations  bool
	AnnotationError string // Set when a table was supplied but could not be used
	Boxes           int
	PopulatedFrames int
	Annotated       int // Frames with boxes burned in

	// Video
	FourCC          string
	VideoWidth      int
	VideoHeight     int
	VideoFrames     int
	VideoDurationMs int
	VideoFileSize   int64
}

// Prepare resolves metadata, buffers the frames and loads annotations.
// The returned session has its index published before it is returned.
func (o *Orchestrator) Prepare(ctx context.Context, log ports.SensorLog, config Config) (*playback.Session, []pipeline.FrameRecord, RunResult, error) {
	// 1. Metadata
	info, err := log.Info()
	if err != nil {
		o.logger.Error(l10n.F("Failed to read log summary: %s", err))
		return nil, nil, RunResult{}, fmt.Errorf("read info: %w", err)
	}

	resolved, err := o.metadataStage.Execute(ctx, pipeline.MetadataInput{Info: info, Topic: config.Topic})
	if err != nil {
		o.logger.Error(l10n.F("Failed to resolve metadata: %s", err))
		return nil, nil, RunResult{}, fmt.Errorf("metadata stage: %w", err)
	}
	meta := resolved.Metadata
	o.logger.Info(l10n.F("Topic %s: %d messages over %.2f s (%.2f fps)", meta.Topic, meta.MessageCount, meta.DurationSeconds, meta.Framerate))

	if o.sink.Enabled() {
		if data, err := yaml.Marshal(meta); err == nil {
			o.sink.SaveMetadataYAML(data)
		}
	}

	result := RunResult{
		Topic:        meta.Topic,
		MessageType:  meta.MessageType,
		MessageCount: meta.MessageCount,
		DurationMs:   meta.DurationMs(),
		Framerate:    meta.Framerate,
		Compressed:   meta.Compressed,
	}

	// 2. Buffer frames
	o.logger.Info(l10n.F("Reading images from %s", meta.Topic))
	extracted, err := o.extractStage.Execute(ctx, pipeline.ExtractInput{
		Log:        log,
		Topic:      meta.Topic,
		Compressed: meta.Compressed,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to read images: %s", err))
		return nil, nil, result, fmt.Errorf("extract stage: %w", err)
	}
	if len(extracted.Frames) == 0 {
		o.logger.Error(l10n.F("No decodable images on %s", meta.Topic))
		return nil, nil, result, fmt.Errorf("%w: %s", ErrEmptyTopic, meta.Topic)
	}
	if extracted.Skipped > 0 {
		o.logger.Warn(l10n.F("Skipped %d undecodable messages", extracted.Skipped))
	}
	if len(extracted.Frames) != meta.MessageCount {
		o.logger.Warn(l10n.F("Buffered %d frames but the summary lists %d messages", len(extracted.Frames), meta.MessageCount))
	}
	o.logger.Info(l10n.F("Buffered %d frames", len(extracted.Frames)))

	result.FrameCount = len(extracted.Frames)
	result.Skipped = extracted.Skipped

	// 3. Annotations and index
	session := playback.NewSession(meta, pipeline.Timestamps(extracted.Frames), o.logger)
	o.loadAnnotations(session, config.AnnotationsPath, &result)

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(session.Index(), "", "  "); err == nil {
			o.sink.SaveIndexJSON(data)
		}
	}

	return session, extracted.Frames, result, nil
}

// loadAnnotations publishes the index built from path into session.
// Failures leave the session without annotations; playback proceeds.
func (o *Orchestrator) loadAnnotations(session *playback.Session, path string, result *RunResult) {
	records, err := o.annotations.Load(path)
	if errors.Is(err, annotation.ErrNoTable) {
		o.logger.Info(l10n.T("No annotation table supplied"))
		session.LoadAnnotations(nil)
		return
	}
	if err != nil {
		o.logger.Error(l10n.F("Failed to load annotations: %s", err))
		result.AnnotationError = err.Error()
		session.LoadAnnotations(nil)
		return
	}

	if err := session.LoadAnnotations(records); err != nil {
		o.logger.Error(l10n.F("Failed to build frame index: %s", err))
		result.AnnotationError = err.Error()
		session.LoadAnnotations(nil)
		return
	}

	idx := session.Index()
	result.HasAnnotations = session.HasAnnotations()
	result.Boxes = idx.BoxCount()
	result.PopulatedFrames = len(idx.Populated())
	o.logger.Info(l10n.F("Indexed %d boxes on %d frames", result.Boxes, result.PopulatedFrames))
}

// Run executes the complete pipeline and returns the playback session built along the way.
func (o *Orchestrator) Run(ctx context.Context, log ports.SensorLog, config Config) (RunResult, *playback.Session, error) {
	o.logger.Info(l10n.T("Starting pipeline"))

	session, frames, result, err := o.Prepare(ctx, log, config)
	if err != nil {
		return result, nil, err
	}

	// 4. Overlay (optional)
	if config.Overlay && session.HasAnnotations() {
		o.logger.Info(l10n.F("Drawing boxes on %d frames", len(frames)))
		overlaid, err := o.overlayStage.Execute(ctx, pipeline.OverlayInput{
			Frames: frames,
			Index:  session.Index(),
			Style:  config.OverlayStyle,
		})
		if err != nil {
			o.logger.Error(l10n.F("Failed to draw boxes: %s", err))
			return result, session, fmt.Errorf("overlay stage: %w", err)
		}
		frames = overlaid.Frames
		result.Annotated = overlaid.Annotated
	}

	// 5. Mux video
	o.logger.Info(l10n.F("Encoding %d frames at %.2f fps", len(frames), result.Framerate))
	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		Frames:     frames,
		FPS:        result.Framerate,
		OutputPath: config.OutputPath,
		Quality:    config.Quality,
		Bitrate:    config.Bitrate,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to encode video: %s", err))
		return result, session, fmt.Errorf("encode stage: %w", err)
	}
	o.logger.Info(l10n.F("Output saved to %s", config.OutputPath))

	result.FourCC = encoded.FourCC
	result.VideoWidth = encoded.Width
	result.VideoHeight = encoded.Height
	result.VideoFrames = encoded.FrameCount
	result.VideoDurationMs = encoded.DurationMs
	result.VideoFileSize = encoded.FileSize

	o.logger.Info(l10n.T("Pipeline completed successfully"))
	return result, session, nil
}
