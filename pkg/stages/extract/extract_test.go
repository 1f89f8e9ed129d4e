package extract

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/user/bagannotate/pkg/adapters/logger"
	"github.com/user/bagannotate/pkg/mocks"
	"github.com/user/bagannotate/pkg/pipeline"
	"github.com/user/bagannotate/pkg/ports"
)

const topic = "/camera/image_raw"

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func messages(n int, step time.Duration) []ports.LogMessage {
	msgs := make([]ports.LogMessage, n)
	for i := range msgs {
		msgs[i] = ports.LogMessage{
			Topic:     topic,
			Type:      ports.TypeImage,
			Timestamp: epoch.Add(time.Duration(i) * step),
			Data:      []byte{byte(i)},
		}
	}
	return msgs
}

func TestStage_Execute(t *testing.T) {
	log := &mocks.SensorLog{Messages: messages(100, 100*time.Millisecond)}
	sink := mocks.NewDebugSink(true)
	stage := NewStage(&mocks.ImageDecoder{}, sink, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.ExtractInput{Log: log, Topic: topic})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Frames) != 100 {
		t.Fatalf("expected 100 frames, got %d", len(result.Frames))
	}
	if result.Read != 100 || result.Skipped != 0 {
		t.Errorf("expected 100 read and 0 skipped, got %d and %d", result.Read, result.Skipped)
	}
	if !result.Origin.Equal(epoch) {
		t.Errorf("expected origin %v, got %v", epoch, result.Origin)
	}
	if result.Frames[0].RelativeTime != 0 {
		t.Errorf("first frame should be at 0, got %v", result.Frames[0].RelativeTime)
	}
	for i, f := range result.Frames {
		if f.Index != i {
			t.Errorf("frame %d: index %d", i, f.Index)
		}
		if i > 0 && f.RelativeTime < result.Frames[i-1].RelativeTime {
			t.Errorf("frame %d: relative time decreased", i)
		}
	}
	if got := result.Frames[50].RelativeTime; got < 4.999 || got > 5.001 {
		t.Errorf("frame 50: expected 5s, got %v", got)
	}
	if sink.DecodedCount() != 100 {
		t.Errorf("expected 100 debug frames, got %d", sink.DecodedCount())
	}
}

func TestStage_Execute_SkipsDecodeFailures(t *testing.T) {
	log := &mocks.SensorLog{Messages: messages(10, time.Second)}
	decoder := &mocks.ImageDecoder{
		DecodeFunc: func(data []byte, compressed bool) (image.Image, error) {
			if data[0] == 0 || data[0] == 4 {
				return nil, errors.New("corrupt jpeg")
			}
			return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
		},
	}
	stage := NewStage(decoder, mocks.NewDebugSink(false), logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.ExtractInput{Log: log, Topic: topic, Compressed: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Frames) != 8 {
		t.Errorf("expected 8 frames, got %d", len(result.Frames))
	}
	if result.Skipped != 2 || result.Read != 10 {
		t.Errorf("expected 10 read and 2 skipped, got %d and %d", result.Read, result.Skipped)
	}
	// The origin moves to the first kept message.
	if !result.Origin.Equal(epoch.Add(time.Second)) {
		t.Errorf("unexpected origin %v", result.Origin)
	}
	if result.Frames[0].RelativeTime != 0 {
		t.Errorf("first frame should be at 0, got %v", result.Frames[0].RelativeTime)
	}
	if result.Frames[3].RelativeTime != 4 {
		t.Errorf("frame 3 should be at 4s, got %v", result.Frames[3].RelativeTime)
	}
}

func TestStage_Execute_PassesCompressedFlag(t *testing.T) {
	log := &mocks.SensorLog{Messages: messages(3, time.Second)}
	var flags []bool
	decoder := &mocks.ImageDecoder{
		DecodeFunc: func(data []byte, compressed bool) (image.Image, error) {
			flags = append(flags, compressed)
			return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
		},
	}
	stage := NewStage(decoder, mocks.NewDebugSink(false), logger.NewNoop())

	if _, err := stage.Execute(context.Background(), pipeline.ExtractInput{Log: log, Topic: topic, Compressed: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range flags {
		if !c {
			t.Errorf("call %d: expected compressed decode", i)
		}
	}
}

func TestStage_Execute_EmptyTopic(t *testing.T) {
	stage := NewStage(&mocks.ImageDecoder{}, mocks.NewDebugSink(false), logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.ExtractInput{Log: &mocks.SensorLog{}, Topic: topic})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Frames) != 0 {
		t.Errorf("expected no frames, got %d", len(result.Frames))
	}
}

func TestStage_Execute_ReadError(t *testing.T) {
	readErr := errors.New("chunk checksum mismatch")
	log := &mocks.SensorLog{Messages: messages(2, time.Second), ReadErr: readErr}
	stage := NewStage(&mocks.ImageDecoder{}, mocks.NewDebugSink(false), logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.ExtractInput{Log: log, Topic: topic})
	if !errors.Is(err, readErr) {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log := &mocks.SensorLog{Messages: messages(5, time.Second)}
	stage := NewStage(&mocks.ImageDecoder{}, mocks.NewDebugSink(false), logger.NewNoop())

	_, err := stage.Execute(ctx, pipeline.ExtractInput{Log: log, Topic: topic})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
