package h264encoder

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/bagannotate/pkg/adapters/codecdetect"
	"github.com/user/bagannotate/pkg/ports"
)

// createTestImage creates a simple test image with gradient
func createTestImage(width, height int, frameNum int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x*255/width + frameNum*10) % 256)
			g := uint8((y*255/height + frameNum*5) % 256)
			b := uint8((x + y + frameNum*3) % 256)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	return img
}

func skipWithoutFFmpeg(t *testing.T) {
	t.Helper()
	if !IsFFmpegAvailable() {
		t.Skip("ffmpeg not available")
	}
}

func TestEncoderBasic(t *testing.T) {
	skipWithoutFFmpeg(t)
	enc := New()

	width, height, fps := 320, 240, 10.0
	if err := enc.Begin(width, height, fps, ports.EncoderOptions{Quality: 25}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	numFrames := 20
	for i := 0; i < numFrames; i++ {
		if err := enc.EncodeFrame(createTestImage(width, height, i), i*100); err != nil {
			t.Fatalf("EncodeFrame failed at frame %d: %v", i, err)
		}
	}

	data, err := enc.End()
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}

	info, err := codecdetect.InspectBytes(data)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.FourCC != FourCC {
		t.Errorf("expected fourcc %s, got %s", FourCC, info.FourCC)
	}
	if info.Frames != numFrames {
		t.Errorf("expected %d frames, got %d", numFrames, info.Frames)
	}
}

func TestEncoderOddDimensions(t *testing.T) {
	skipWithoutFFmpeg(t)
	enc := New()

	if err := enc.Begin(101, 75, 5, ports.EncoderOptions{}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := enc.EncodeFrame(createTestImage(101, 75, 0), 0); err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	if _, err := enc.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
}

func TestEncoderNotInitialized(t *testing.T) {
	enc := New()

	if err := enc.EncodeFrame(createTestImage(10, 10, 0), 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got: %v", err)
	}
	if _, err := enc.End(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got: %v", err)
	}
}

func TestBeginWithoutFFmpeg(t *testing.T) {
	SetFFmpegPath(filepath.Join(t.TempDir(), "no-ffmpeg"))
	defer SetFFmpegPath("")

	err := New().Begin(10, 10, 10, ports.EncoderOptions{})
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}
}

func TestArgs(t *testing.T) {
	args := strings.Join(Args(640, 480, 10.1, ports.EncoderOptions{Quality: 18, Bitrate: 800}, "out.mp4"), " ")

	for _, want := range []string{"-s 640x480", "-r 10.1", "-crf 18", "-b:v 800k", "-tag:v avc1"} {
		if !strings.Contains(args, want) {
			t.Errorf("expected %q in %q", want, args)
		}
	}
	if !strings.HasSuffix(args, "out.mp4") {
		t.Errorf("output path should be last: %q", args)
	}

	defaults := strings.Join(Args(2, 2, 1, ports.EncoderOptions{Quality: 90}, "x.mp4"), " ")
	if !strings.Contains(defaults, "-crf 23") {
		t.Errorf("out-of-range quality should use default CRF: %q", defaults)
	}
}

func BenchmarkEncode640x480(b *testing.B) {
	if !IsFFmpegAvailable() {
		b.Skip("ffmpeg not available")
	}
	enc := New()
	width, height := 640, 480

	if err := enc.Begin(width, height, 30.0, ports.EncoderOptions{Quality: 25}); err != nil {
		b.Fatalf("Begin failed: %v", err)
	}

	img := createTestImage(width, height, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := enc.EncodeFrame(img, i*33); err != nil {
			b.Fatalf("EncodeFrame failed: %v", err)
		}
	}
	b.StopTimer()

	enc.End()
}
