package playback

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/user/bagannotate/pkg/annotation"
	"github.com/user/bagannotate/pkg/frameindex"
	"github.com/user/bagannotate/pkg/pipeline"
	"github.com/user/bagannotate/pkg/ports"
)

// PaintState is the two-click selection state.
type PaintState int

const (
	PaintIdle PaintState = iota
	PaintFirstPointSet
	PaintComplete
)

// String returns the state name.
func (s PaintState) String() string {
	switch s {
	case PaintIdle:
		return "idle"
	case PaintFirstPointSet:
		return "first_point_set"
	case PaintComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Session holds the playback state for one opened log.
//
// The index pointer is only swapped after a complete build, so readers on the
// render path always see either the previous index or the new one.
type Session struct {
	id         string
	meta       pipeline.LogMetadata
	timestamps []float64
	logger     ports.Logger

	index          atomic.Pointer[frameindex.Index]
	hasAnnotations atomic.Bool
	cursor         atomic.Int64

	mu     sync.Mutex
	paint  PaintState
	first  image.Point
	second image.Point
}

// NewSession creates a session for the buffered frames described by meta.
// timestamps are the relative times of the buffered frames.
func NewSession(meta pipeline.LogMetadata, timestamps []float64, logger ports.Logger) *Session {
	id := uuid.NewString()
	s := &Session{
		id:         id,
		meta:       meta,
		timestamps: timestamps,
		logger:     logger.WithComponent("playback-" + id[:8]),
	}
	s.index.Store(frameindex.Empty(len(timestamps)))
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Metadata returns the log metadata the session was created with.
func (s *Session) Metadata() pipeline.LogMetadata {
	return s.meta
}

// FrameCount returns the number of buffered frames.
func (s *Session) FrameCount() int {
	return len(s.timestamps)
}

// LoadAnnotations builds an index from records and publishes it.
// nil records publish an all-empty index. On error the previous index stays.
func (s *Session) LoadAnnotations(records []annotation.BoxRecord) error {
	if records == nil {
		s.index.Store(frameindex.Empty(len(s.timestamps)))
		s.hasAnnotations.Store(false)
		s.logger.Debug("Annotations cleared")
		return nil
	}

	idx, err := frameindex.Build(s.timestamps, records)
	if err != nil {
		return fmt.Errorf("load annotations: %w", err)
	}
	s.Publish(idx)
	s.logger.Debug("Published index: %d boxes on %d frames", idx.BoxCount(), len(idx.Populated()))
	return nil
}

// Publish installs a fully built index.
func (s *Session) Publish(idx *frameindex.Index) {
	s.index.Store(idx)
	s.hasAnnotations.Store(true)
}

// Index returns the currently published index.
func (s *Session) Index() *frameindex.Index {
	return s.index.Load()
}

// HasAnnotations reports whether an annotation table has been loaded.
func (s *Session) HasAnnotations() bool {
	return s.hasAnnotations.Load()
}

// Seek maps positionMs to a frame, moves the cursor there and returns its boxes.
//
// The projection uses the log's message count, the same count the video
// framerate was derived from. When messages were skipped during decoding the
// mapped ordinal can land past the buffered frames; that query fails with
// ErrIndexRange and the cursor is left unchanged.
func (s *Session) Seek(positionMs int64) (frameindex.BoundBox, error) {
	frame, err := MapPosition(s.meta.MessageCount, s.meta.DurationMs(), positionMs)
	if err != nil {
		return frameindex.BoundBox{}, err
	}
	if frame >= len(s.timestamps) {
		return frameindex.BoundBox{}, fmt.Errorf("%w: position %dms maps to frame %d but only %d frames are buffered",
			ErrIndexRange, positionMs, frame, len(s.timestamps))
	}
	s.cursor.Store(int64(frame))
	return s.Index().Lookup(frame), nil
}

// Present returns the boxes for the frame being presented and advances the
// cursor. The cursor stops at the last frame.
func (s *Session) Present() frameindex.BoundBox {
	frame := int(s.cursor.Load())
	b := s.Index().Lookup(frame)
	if frame < len(s.timestamps)-1 {
		s.cursor.CompareAndSwap(int64(frame), int64(frame+1))
	}
	return b
}

// Restart moves the cursor back to the first frame.
func (s *Session) Restart() {
	s.cursor.Store(0)
}

// Cursor returns the current frame ordinal.
func (s *Session) Cursor() int {
	return int(s.cursor.Load())
}

// Current returns the boxes of the frame under the cursor.
func (s *Session) Current() frameindex.BoundBox {
	return s.Index().Lookup(s.Cursor())
}

// Click feeds one pointer press into the selection state machine and
// returns the resulting state. Clicks after completion are ignored.
func (s *Session) Click(x, y int) PaintState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.paint {
	case PaintIdle:
		s.first = image.Pt(x, y)
		s.paint = PaintFirstPointSet
	case PaintFirstPointSet:
		s.second = image.Pt(x, y)
		s.paint = PaintComplete
	}
	return s.paint
}

// ResetPaint clears the selection.
func (s *Session) ResetPaint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paint = PaintIdle
	s.first = image.Point{}
	s.second = image.Point{}
}

// PaintState returns the selection state.
func (s *Session) PaintState() PaintState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paint
}

// Selection returns the selected rectangle once both points are set.
func (s *Session) Selection() (image.Rectangle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paint != PaintComplete {
		return image.Rectangle{}, false
	}
	return image.Rectangle{Min: s.first, Max: s.second}.Canon(), true
}
