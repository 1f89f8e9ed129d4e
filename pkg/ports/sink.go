package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveMetadataYAML saves the resolved log metadata.
	SaveMetadataYAML(data []byte) error

	// SaveIndexJSON saves the frame-box index.
	SaveIndexJSON(data []byte) error

	// SaveDecodedFrame saves a frame as decoded from the log.
	SaveDecodedFrame(index int, img image.Image) error

	// SaveOverlayFrame saves a frame after boxes were drawn on it.
	SaveOverlayFrame(index int, img image.Image) error
}
