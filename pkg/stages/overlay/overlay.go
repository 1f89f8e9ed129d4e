// Package overlay implements the stage that burns annotation boxes into frames.
package overlay

import (
	"context"
	"fmt"
	"image/color"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/user/bagannotate/pkg/annotation"
	"github.com/user/bagannotate/pkg/pipeline"
	"github.com/user/bagannotate/pkg/ports"
)

// Stage draws each frame's boxes onto a copy of the frame.
type Stage struct {
	renderer   ports.Renderer
	sink       ports.DebugSink
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new overlay stage.
func NewStage(renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		renderer:   renderer,
		sink:       sink,
		logger:     logger.WithComponent("overlay"),
		numWorkers: numWorkers,
	}
}

// Execute draws boxes on every frame that has any. Frames without boxes are
// passed through unchanged. The index must not be modified while this runs.
func (s *Stage) Execute(ctx context.Context, input pipeline.OverlayInput) (pipeline.OverlayResult, error) {
	if len(input.Frames) == 0 {
		return pipeline.OverlayResult{Frames: []pipeline.FrameRecord{}}, nil
	}
	if input.Index == nil || len(input.Index.Populated()) == 0 {
		s.logger.Debug("No boxes to draw")
		return pipeline.OverlayResult{Frames: input.Frames}, nil
	}

	s.logger.Debug("Drawing boxes on %d frames with %d workers", len(input.Frames), s.numWorkers)

	result, err := s.executeParallel(ctx, input)
	if err != nil {
		return result, err
	}

	s.logger.Debug("Overlay completed: %d frames annotated", result.Annotated)
	return result, nil
}

type overlaidFrame struct {
	frame     pipeline.FrameRecord
	annotated bool
}

// executeParallel draws frames using a worker pool.
func (s *Stage) executeParallel(ctx context.Context, input pipeline.OverlayInput) (pipeline.OverlayResult, error) {
	numFrames := len(input.Frames)
	jobs := make(chan int, numFrames)
	results := make(chan overlaidFrame, numFrames)
	errChan := make(chan error, s.numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < s.numWorkers; w++ {
		wg.Add(1)
		go s.worker(ctx, &wg, input, jobs, results, errChan)
	}

	for i := 0; i < numFrames; i++ {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
		close(errChan)
	}()

	frames := make([]overlaidFrame, 0, numFrames)
	for result := range results {
		frames = append(frames, result)

		if result.annotated && s.sink.Enabled() {
			if err := s.sink.SaveOverlayFrame(result.frame.Index, result.frame.Image); err != nil {
				s.logger.Warn("Failed to save debug frame %d: %v", result.frame.Index, err)
			}
		}
	}

	if err := <-errChan; err != nil {
		return pipeline.OverlayResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return pipeline.OverlayResult{}, err
	}
	if len(frames) != numFrames {
		return pipeline.OverlayResult{}, fmt.Errorf("overlay: %d of %d frames drawn", len(frames), numFrames)
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].frame.Index < frames[j].frame.Index
	})

	out := pipeline.OverlayResult{Frames: make([]pipeline.FrameRecord, numFrames)}
	for i, f := range frames {
		out.Frames[i] = f.frame
		if f.annotated {
			out.Annotated++
		}
	}
	return out, nil
}

func (s *Stage) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	input pipeline.OverlayInput,
	jobs <-chan int,
	results chan<- overlaidFrame,
	errChan chan<- error,
) {
	defer wg.Done()

	for idx := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, annotated, err := s.drawFrame(input, idx)
		if err != nil {
			select {
			case errChan <- fmt.Errorf("overlay frame %d: %w", idx, err):
			default:
			}
			return
		}

		results <- overlaidFrame{frame: frame, annotated: annotated}
	}
}

// drawFrame outlines every box of frame idx, labelled with its id when requested.
func (s *Stage) drawFrame(input pipeline.OverlayInput, idx int) (pipeline.FrameRecord, bool, error) {
	frame := input.Frames[idx]
	if frame.Image == nil {
		return frame, false, fmt.Errorf("frame has no image")
	}

	group := input.Index.Lookup(frame.Index)
	if group.Empty() {
		return frame, false, nil
	}

	style := input.Style
	if style.Color == nil {
		style = pipeline.DefaultOverlayStyle()
	}

	canvas := s.renderer.CanvasFrom(frame.Image)
	for i, rect := range group.Params {
		canvas.DrawRectStroke(rect.X, rect.Y, rect.Width, rect.Height, style.Color, style.StrokeWidth)
		if style.ShowIDs {
			s.drawLabel(canvas, strconv.Itoa(group.BoxIDs[i]), rect, style.Color)
		}
	}

	return pipeline.FrameRecord{
		Index:        frame.Index,
		Image:        canvas.ToImage(),
		RelativeTime: frame.RelativeTime,
	}, true, nil
}

// Label tags are sized for the renderer's built-in 7x13 face.
const (
	labelCharWidth = 7
	labelHeight    = 15
	labelPadding   = 2
)

// drawLabel stamps text on a tag filled with the box color, just above the
// box, or inside its top edge when the box touches the top of the frame.
func (s *Stage) drawLabel(canvas ports.Canvas, text string, r annotation.Rect, c color.Color) {
	w := len(text)*labelCharWidth + 2*labelPadding
	tag := s.renderer.CreateCanvas(w, labelHeight, c)
	tag.DrawText(text, labelPadding, labelHeight/2, ports.TextStyle{
		Color: color.White,
		Align: ports.AlignLeft,
	})

	y := r.Y - labelHeight
	if y < 0 {
		y = r.Y
	}
	canvas.DrawImage(tag.ToImage(), r.X, y)
}
