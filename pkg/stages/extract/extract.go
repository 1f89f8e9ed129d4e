// Package extract implements the stage that buffers the image topic of a
// sensor log as decoded frames.
package extract

import (
	"context"
	"fmt"

	"github.com/user/bagannotate/pkg/pipeline"
	"github.com/user/bagannotate/pkg/ports"
)

// Stage reads every message of one topic and decodes it into a FrameRecord.
type Stage struct {
	decoder ports.ImageDecoder
	sink    ports.DebugSink
	logger  ports.Logger
}

// NewStage creates a new extract stage.
func NewStage(decoder ports.ImageDecoder, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		decoder: decoder,
		sink:    sink,
		logger:  logger.WithComponent("extract"),
	}
}

// Execute buffers the topic in timestamp order.
//
// Messages that fail to decode are logged and skipped. Relative times are
// measured from the first frame that was kept, so the first record is always
// at 0 and the sequence never decreases.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
	result := pipeline.ExtractResult{Frames: []pipeline.FrameRecord{}}

	s.logger.Debug("Reading topic %s (compressed: %t)", input.Topic, input.Compressed)

	err := input.Log.ReadMessages(ctx, input.Topic, func(msg ports.LogMessage) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Read++

		img, err := s.decoder.Decode(msg.Data, input.Compressed)
		if err != nil {
			result.Skipped++
			s.logger.Warn("Skipping message %d at %s: %v", result.Read-1, msg.Timestamp.Format("15:04:05.000"), err)
			return nil
		}

		if len(result.Frames) == 0 {
			result.Origin = msg.Timestamp
		}
		rel := msg.Timestamp.Sub(result.Origin).Seconds()
		if n := len(result.Frames); n > 0 && rel < result.Frames[n-1].RelativeTime {
			rel = result.Frames[n-1].RelativeTime
		}

		frame := pipeline.FrameRecord{
			Index:        len(result.Frames),
			Image:        img,
			RelativeTime: rel,
		}
		result.Frames = append(result.Frames, frame)

		if s.sink.Enabled() {
			if err := s.sink.SaveDecodedFrame(frame.Index, img); err != nil {
				s.logger.Warn("Failed to save debug frame %d: %v", frame.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("read topic %s: %w", input.Topic, err)
	}

	s.logger.Debug("Buffered %d frames (%d skipped)", len(result.Frames), result.Skipped)
	return result, nil
}
