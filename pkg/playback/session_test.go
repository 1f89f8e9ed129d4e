package playback

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/user/bagannotate/pkg/adapters/logger"
	"github.com/user/bagannotate/pkg/annotation"
	"github.com/user/bagannotate/pkg/frameindex"
	"github.com/user/bagannotate/pkg/pipeline"
)

func newTestSession(frames int, seconds float64) *Session {
	ts := make([]float64, frames)
	for i := range ts {
		ts[i] = seconds * float64(i) / float64(frames)
	}
	meta := pipeline.LogMetadata{
		Topic:           "/camera/image_raw",
		MessageType:     "sensor_msgs/Image",
		MessageCount:    frames,
		DurationSeconds: seconds,
		Framerate:       float64(frames) / seconds,
	}
	return NewSession(meta, ts, logger.NewNoop())
}

func box(id int) annotation.BoxRecord {
	return annotation.BoxRecord{BoxID: id, Rect: annotation.Rect{X: id, Y: id, Width: 5, Height: 5}}
}

func TestNewSession(t *testing.T) {
	s := newTestSession(10, 1)

	if s.ID() == "" {
		t.Error("expected a session id")
	}
	if s.HasAnnotations() {
		t.Error("new session should have no annotations")
	}
	if s.Index().Len() != 10 {
		t.Errorf("expected empty index of 10 frames, got %d", s.Index().Len())
	}
	if !s.Current().Empty() {
		t.Error("expected empty group before annotations are loaded")
	}
	if s.PaintState() != PaintIdle {
		t.Errorf("expected idle paint state, got %v", s.PaintState())
	}
}

func TestSession_IDsAreUnique(t *testing.T) {
	a := newTestSession(1, 1)
	b := newTestSession(1, 1)
	if a.ID() == b.ID() {
		t.Error("expected distinct session ids")
	}
}

func TestSession_SeekScenario(t *testing.T) {
	// 100 frames over 10 s with sentinels at rows 0, 5 and 9.
	s := newTestSession(100, 10)
	records := []annotation.BoxRecord{
		box(0), box(1), box(2), box(3), box(4),
		box(0), box(1), box(2), box(3),
		box(0), box(1), box(2),
	}
	if err := s.LoadAnnotations(records); err != nil {
		t.Fatalf("LoadAnnotations: %v", err)
	}
	if !s.HasAnnotations() {
		t.Fatal("expected annotations after load")
	}
	if got := s.Metadata().Framerate; got != 10 {
		t.Errorf("expected 10 fps, got %v", got)
	}

	tests := []struct {
		position int64
		frame    int
		boxes    int
	}{
		{0, 0, 5},
		{10, 0, 5},
		{100, 1, 4},
		{200, 2, 3},
		{300, 3, 0},
		{10000, 99, 0},
	}
	for _, tt := range tests {
		b, err := s.Seek(tt.position)
		if err != nil {
			t.Fatalf("Seek(%d): %v", tt.position, err)
		}
		if s.Cursor() != tt.frame {
			t.Errorf("Seek(%d): cursor %d, want %d", tt.position, s.Cursor(), tt.frame)
		}
		if b.Len() != tt.boxes {
			t.Errorf("Seek(%d): %d boxes, want %d", tt.position, b.Len(), tt.boxes)
		}
	}
}

func TestSession_SeekOutOfRange(t *testing.T) {
	s := newTestSession(10, 1)
	if _, err := s.Seek(2000); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
	if s.Cursor() != 0 {
		t.Errorf("failed seek should not move the cursor, got %d", s.Cursor())
	}
}

func TestSession_SeekWithSkippedMessages(t *testing.T) {
	// 100 messages over 10 s, of which only 90 decoded.
	ts := make([]float64, 90)
	for i := range ts {
		ts[i] = float64(i) * 0.1
	}
	meta := pipeline.LogMetadata{
		Topic:           "/camera/image_raw",
		MessageCount:    100,
		DurationSeconds: 10,
		Framerate:       10,
	}
	s := NewSession(meta, ts, logger.NewNoop())

	tests := []struct {
		position int64
		frame    int
	}{
		{0, 0},
		{4500, 45},
		{8900, 89},
	}
	for _, tt := range tests {
		b, err := s.Seek(tt.position)
		if err != nil {
			t.Fatalf("Seek(%d): %v", tt.position, err)
		}
		if b.FrameIndex != tt.frame || s.Cursor() != tt.frame {
			t.Errorf("Seek(%d): frame %d cursor %d, want %d", tt.position, b.FrameIndex, s.Cursor(), tt.frame)
		}
	}

	// Positions mapping past the buffered frames fail for that query only.
	for _, pos := range []int64{9000, 10000} {
		if _, err := s.Seek(pos); !errors.Is(err, ErrIndexRange) {
			t.Errorf("Seek(%d): expected ErrIndexRange, got %v", pos, err)
		}
	}
	if s.Cursor() != 89 {
		t.Errorf("failed seek should keep the cursor at 89, got %d", s.Cursor())
	}
}

func TestSession_LoadNilRecords(t *testing.T) {
	s := newTestSession(5, 1)
	if err := s.LoadAnnotations([]annotation.BoxRecord{box(0), box(1)}); err != nil {
		t.Fatalf("LoadAnnotations: %v", err)
	}
	if err := s.LoadAnnotations(nil); err != nil {
		t.Fatalf("LoadAnnotations(nil): %v", err)
	}

	if s.HasAnnotations() {
		t.Error("expected no annotations after nil load")
	}
	if len(s.Index().Populated()) != 0 {
		t.Error("expected an all-empty index")
	}
	if s.Index().Len() != 5 {
		t.Errorf("expected 5 frames, got %d", s.Index().Len())
	}
}

func TestSession_FailedLoadKeepsPreviousIndex(t *testing.T) {
	s := newTestSession(2, 1)
	if err := s.LoadAnnotations([]annotation.BoxRecord{box(0), box(7)}); err != nil {
		t.Fatalf("LoadAnnotations: %v", err)
	}
	before := s.Index()

	err := s.LoadAnnotations([]annotation.BoxRecord{box(0), box(0), box(0)})
	if !errors.Is(err, frameindex.ErrIndexRange) {
		t.Fatalf("expected ErrIndexRange, got %v", err)
	}
	if s.Index() != before {
		t.Error("failed load should not replace the published index")
	}
}

func TestSession_PresentAndRestart(t *testing.T) {
	s := newTestSession(3, 1)
	if err := s.LoadAnnotations([]annotation.BoxRecord{box(0), box(0), box(1), box(0)}); err != nil {
		t.Fatalf("LoadAnnotations: %v", err)
	}

	want := []int{1, 2, 1, 1}
	for i, n := range want {
		if got := s.Present().Len(); got != n {
			t.Errorf("present %d: %d boxes, want %d", i, got, n)
		}
	}
	if s.Cursor() != 2 {
		t.Errorf("cursor should stop at the last frame, got %d", s.Cursor())
	}

	s.Restart()
	if s.Cursor() != 0 {
		t.Errorf("expected cursor 0 after restart, got %d", s.Cursor())
	}
	if s.Current().FrameIndex != 0 {
		t.Errorf("expected current frame 0, got %d", s.Current().FrameIndex)
	}
}

func TestSession_ClickStateMachine(t *testing.T) {
	s := newTestSession(1, 1)

	if _, ok := s.Selection(); ok {
		t.Error("expected no selection while idle")
	}
	if got := s.Click(50, 40); got != PaintFirstPointSet {
		t.Errorf("first click: got %v", got)
	}
	if _, ok := s.Selection(); ok {
		t.Error("expected no selection after one click")
	}
	if got := s.Click(10, 20); got != PaintComplete {
		t.Errorf("second click: got %v", got)
	}
	if got := s.Click(99, 99); got != PaintComplete {
		t.Errorf("third click should be ignored, got %v", got)
	}

	sel, ok := s.Selection()
	if !ok {
		t.Fatal("expected a selection")
	}
	if want := image.Rect(10, 20, 50, 40); sel != want {
		t.Errorf("selection = %v, want %v", sel, want)
	}

	s.ResetPaint()
	if s.PaintState() != PaintIdle {
		t.Errorf("expected idle after reset, got %v", s.PaintState())
	}
	if got := s.Click(1, 1); got != PaintFirstPointSet {
		t.Errorf("click after reset: got %v", got)
	}
}

func TestSession_ConcurrentReadsDuringPublish(t *testing.T) {
	s := newTestSession(50, 5)
	records := []annotation.BoxRecord{box(0), box(1), box(0), box(2)}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				idx := s.Index()
				if idx.Len() != 50 {
					t.Errorf("observed index of %d frames", idx.Len())
					return
				}
				_ = idx.Lookup(j % 50)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		if err := s.LoadAnnotations(records); err != nil {
			t.Fatalf("LoadAnnotations: %v", err)
		}
	}
	wg.Wait()
}

func TestPaintState_String(t *testing.T) {
	if PaintComplete.String() != "complete" {
		t.Errorf("unexpected %q", PaintComplete.String())
	}
	if PaintState(42).String() != "unknown" {
		t.Errorf("unexpected %q", PaintState(42).String())
	}
}
