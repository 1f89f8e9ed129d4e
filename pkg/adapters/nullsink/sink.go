// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/bagannotate/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

func (s *Sink) SaveMetadataYAML(data []byte) error {
	return nil
}

func (s *Sink) SaveIndexJSON(data []byte) error {
	return nil
}

func (s *Sink) SaveDecodedFrame(index int, img image.Image) error {
	return nil
}

func (s *Sink) SaveOverlayFrame(index int, img image.Image) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
