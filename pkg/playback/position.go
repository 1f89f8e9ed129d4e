// Package playback maps player positions to annotation frames and holds the
// per-file playback state.
package playback

import (
	"fmt"
	"math"

	"github.com/user/bagannotate/pkg/frameindex"
	"github.com/user/bagannotate/pkg/stages/metadata"
)

var (
	// ErrIndexRange is returned for positions outside [0, duration].
	ErrIndexRange = frameindex.ErrIndexRange

	// ErrMetadata is returned when the duration or message count cannot be mapped.
	ErrMetadata = metadata.ErrMetadata
)

// MapPosition converts a playback position in milliseconds to a frame ordinal.
//
// The result is round(count * position / duration) clamped to [0, count-1],
// so position 0 maps to the first frame and position == duration to the last.
func MapPosition(count int, durationMs, positionMs int64) (int, error) {
	if durationMs <= 0 {
		return 0, fmt.Errorf("%w: duration %dms", ErrMetadata, durationMs)
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: message count %d", ErrMetadata, count)
	}
	if positionMs < 0 || positionMs > durationMs {
		return 0, fmt.Errorf("%w: position %dms outside [0, %d]", ErrIndexRange, positionMs, durationMs)
	}

	frame := int(math.Round(float64(count) * float64(positionMs) / float64(durationMs)))
	if frame > count-1 {
		frame = count - 1
	}
	if frame < 0 {
		frame = 0
	}
	return frame, nil
}
