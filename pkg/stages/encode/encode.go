// Package encode implements the video muxing stage.
package encode

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/user/bagannotate/pkg/adapters/codecdetect"
	"github.com/user/bagannotate/pkg/pipeline"
	"github.com/user/bagannotate/pkg/ports"
)

// Extensions accepted for the output container.
var Extensions = []string{".mp4", ".m4v", ".mov"}

// Stage muxes buffered frames into an MP4 file with a fixed codec tag.
type Stage struct {
	encoder  ports.VideoEncoder
	renderer ports.Renderer
	fs       ports.FileSystem
	logger   ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(encoder ports.VideoEncoder, renderer ports.Renderer, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		encoder:  encoder,
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("encode"),
	}
}

// Execute writes all frames in buffer order. Sample i is presented at i/FPS seconds.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if len(input.Frames) == 0 {
		return result, ErrNoFrames
	}
	if input.FPS <= 0 || math.IsNaN(input.FPS) || math.IsInf(input.FPS, 0) {
		return result, fmt.Errorf("%w: invalid framerate %v", ErrOutput, input.FPS)
	}
	if err := s.checkOutputPath(input.OutputPath); err != nil {
		return result, err
	}

	lock := flock.New(input.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("%w: lock %s: %v", ErrOutput, input.OutputPath, err)
	}
	if !locked {
		return result, fmt.Errorf("%w: %s is being written by another process", ErrOutput, input.OutputPath)
	}
	defer func() {
		lock.Unlock()
		s.fs.Remove(lock.Path())
	}()

	// Get dimensions from first frame
	bounds := input.Frames[0].Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	opts := ports.EncoderOptions{
		Bitrate: input.Bitrate,
		Quality: input.Quality,
	}

	s.logger.Debug("Encoding %d frames %dx%d at %.3f fps as %s", len(input.Frames), width, height, input.FPS, s.encoder.FourCC())

	if err := s.encoder.Begin(width, height, input.FPS, opts); err != nil {
		return result, fmt.Errorf("%w: begin %s encoding: %v", ErrOutput, s.encoder.FourCC(), err)
	}

	scaled := 0
	for i, frame := range input.Frames {
		select {
		case <-ctx.Done():
			s.encoder.End()
			return result, ctx.Err()
		default:
		}

		img := frame.Image
		if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
			img = s.renderer.ResizeImage(img, width, height)
			scaled++
		}

		ts := TimestampMs(i, input.FPS)
		if err := s.encoder.EncodeFrame(img, ts); err != nil {
			s.encoder.End()
			return result, fmt.Errorf("encode frame %d at %dms: %w", i, ts, err)
		}
	}
	if scaled > 0 {
		s.logger.Warn("Scaled %d frames to %dx%d", scaled, width, height)
	}

	data, err := s.encoder.End()
	if err != nil {
		return result, fmt.Errorf("end encoding: %w", err)
	}

	info, err := codecdetect.InspectBytes(data)
	if err != nil {
		return result, fmt.Errorf("%w: inspect encoded video: %v", ErrOutput, err)
	}
	if info.FourCC != s.encoder.FourCC() {
		return result, fmt.Errorf("%w: container tag %q, want %q", ErrOutput, info.FourCC, s.encoder.FourCC())
	}
	if info.Frames != len(input.Frames) {
		return result, fmt.Errorf("%w: container has %d samples, want %d", ErrOutput, info.Frames, len(input.Frames))
	}

	if err := s.fs.WriteFile(input.OutputPath, data); err != nil {
		return result, fmt.Errorf("%w: write %s: %v", ErrOutput, input.OutputPath, err)
	}

	result.FourCC = info.FourCC
	result.FrameCount = info.Frames
	result.Width = width
	result.Height = height
	result.DurationMs = TimestampMs(len(input.Frames), input.FPS)
	result.FileSize = int64(len(data))

	s.logger.Debug("Wrote %s (%d bytes)", input.OutputPath, result.FileSize)
	return result, nil
}

func (s *Stage) checkOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path is empty", ErrOutput)
	}

	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range Extensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: unsupported container extension %q", ErrOutput, ext)
	}

	dir := filepath.Dir(path)
	isDir, err := s.fs.IsDir(dir)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrOutput, dir, err)
	}
	if !isDir {
		return fmt.Errorf("%w: directory %s does not exist", ErrOutput, dir)
	}
	return nil
}

// TimestampMs returns the presentation time of sample i in milliseconds.
func TimestampMs(i int, fps float64) int {
	return int(math.Round(float64(i) * 1000 / fps))
}
