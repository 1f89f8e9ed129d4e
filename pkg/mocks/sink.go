package mocks

import (
	"image"
	"sync"

	"github.com/user/bagannotate/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	MetadataYAML  []byte
	IndexJSON     []byte
	DecodedFrames map[int]image.Image
	OverlayFrames map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		DecodedFrames: make(map[int]image.Image),
		OverlayFrames: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveMetadataYAML(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MetadataYAML = data
	return nil
}

func (m *DebugSink) SaveIndexJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IndexJSON = data
	return nil
}

func (m *DebugSink) SaveDecodedFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DecodedFrames[index] = img
	return nil
}

func (m *DebugSink) SaveOverlayFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OverlayFrames[index] = img
	return nil
}

// DecodedCount returns the number of saved decoded frames.
func (m *DebugSink) DecodedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.DecodedFrames)
}

// OverlayCount returns the number of saved overlay frames.
func (m *DebugSink) OverlayCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.OverlayFrames)
}

var _ ports.DebugSink = (*DebugSink)(nil)
