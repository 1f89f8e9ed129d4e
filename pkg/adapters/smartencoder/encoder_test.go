package smartencoder

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/bagannotate/pkg/adapters/h264encoder"
	"github.com/user/bagannotate/pkg/mocks"
)

func TestNewMJPEGEncoder(t *testing.T) {
	encoder, info, err := New("jpeg", Options{})
	if err != nil {
		t.Fatalf("failed to create MJPEG encoder: %v", err)
	}
	if encoder == nil {
		t.Fatal("encoder is nil")
	}
	if encoder.FourCC() != "jpeg" || info.FourCC != "jpeg" {
		t.Errorf("expected jpeg, got encoder=%s info=%s", encoder.FourCC(), info.FourCC)
	}
	if info.Backend != BackendGo {
		t.Errorf("expected backend go, got %s", info.Backend)
	}
	if info.FallbackUsed {
		t.Error("fallback should not be used for jpeg")
	}
}

func TestNewH264Encoder(t *testing.T) {
	encoder, info, err := New("avc1", Options{AllowFallback: true})
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	if encoder.FourCC() != info.FourCC {
		t.Errorf("info fourcc %s does not match encoder %s", info.FourCC, encoder.FourCC())
	}
	if info.RequestedFourCC != "avc1" {
		t.Errorf("expected requested avc1, got %s", info.RequestedFourCC)
	}

	t.Logf("Selected encoder: fourcc=%s, backend=%s, fallback=%v",
		info.FourCC, info.Backend, info.FallbackUsed)
}

func TestFallbackWithoutFFmpeg(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-ffmpeg")
	defer h264encoder.SetFFmpegPath("")

	logger := mocks.NewLogger()
	encoder, info, err := New("avc1", Options{FFmpegPath: missing, AllowFallback: true, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.FallbackUsed || info.FourCC != "jpeg" || encoder.FourCC() != "jpeg" {
		t.Errorf("expected jpeg fallback, got %+v", info)
	}
	if !logger.HasMessage("%s encoder not available, falling back to %s") {
		t.Error("expected fallback warning")
	}

	_, _, err = New("avc1", Options{FFmpegPath: missing})
	if !errors.Is(err, ErrNoEncoderAvailable) {
		t.Errorf("expected ErrNoEncoderAvailable, got %v", err)
	}
}

func TestUnknownTag(t *testing.T) {
	if _, _, err := New("hvc1", Options{AllowFallback: true}); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("expected ErrUnknownTag, got %v", err)
	}
}

func TestTags(t *testing.T) {
	tags := Tags()
	if len(tags) != 2 || tags[0] != "jpeg" || tags[1] != "avc1" {
		t.Errorf("unexpected tags %v", tags)
	}
}
