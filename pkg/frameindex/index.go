// Package frameindex maps frame ordinals to the annotation boxes shown on them.
//
// An Index is built once per annotation load and is read-only afterwards,
// so lookups from a render loop need no locking.
package frameindex

import (
	"encoding/json"
	"fmt"

	"github.com/user/bagannotate/pkg/annotation"
)

// ErrIndexRange is returned when a box group or query falls outside the buffer.
var ErrIndexRange = annotation.ErrIndexRange

// BoundBox is the set of boxes associated with one frame ordinal.
// The three slices are parallel and keep table row order.
type BoundBox struct {
	FrameIndex int               `json:"frame"`
	Timestamps []float64         `json:"timestamps"`
	BoxIDs     []int             `json:"box_ids"`
	Params     []annotation.Rect `json:"boxes"`
}

// Len returns the number of boxes in the group.
func (b BoundBox) Len() int {
	return len(b.BoxIDs)
}

// Empty reports whether the group has no boxes.
func (b BoundBox) Empty() bool {
	return len(b.BoxIDs) == 0
}

func (b *BoundBox) add(timestamp float64, rec annotation.BoxRecord) {
	b.Timestamps = append(b.Timestamps, timestamp)
	b.BoxIDs = append(b.BoxIDs, rec.BoxID)
	b.Params = append(b.Params, rec.Rect)
}

// Index maps frame ordinal to BoundBox. Len() always equals the frame count
// it was built for.
type Index struct {
	boxes []BoundBox
}

// Empty returns an index with one empty BoundBox per frame.
func Empty(frameCount int) *Index {
	boxes := make([]BoundBox, frameCount)
	for i := range boxes {
		boxes[i].FrameIndex = i
	}
	return &Index{boxes: boxes}
}

// Build allocates one BoundBox per timestamp and attaches records to them
// using annotation.Group. Each box is stamped with its frame's relative time.
// Build returns either a complete index or an error, never a partial index.
func Build(timestamps []float64, records []annotation.BoxRecord) (*Index, error) {
	ordinals, err := annotation.Group(records, len(timestamps))
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	idx := Empty(len(timestamps))
	for i, rec := range records {
		frame := ordinals[i]
		idx.boxes[frame].add(timestamps[frame], rec)
	}
	return idx, nil
}

// Len returns the number of frames covered by the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.boxes)
}

// Lookup returns the boxes for frame. Out-of-range ordinals yield an empty
// BoundBox; callers that need range errors must check Len first.
func (idx *Index) Lookup(frame int) BoundBox {
	if idx == nil || frame < 0 || frame >= len(idx.boxes) {
		return BoundBox{FrameIndex: frame}
	}
	return idx.boxes[frame]
}

// Populated returns the ordinals of frames with at least one box.
func (idx *Index) Populated() []int {
	if idx == nil {
		return nil
	}
	var frames []int
	for i, b := range idx.boxes {
		if !b.Empty() {
			frames = append(frames, i)
		}
	}
	return frames
}

// BoxCount returns the total number of boxes across all frames.
func (idx *Index) BoxCount() int {
	if idx == nil {
		return 0
	}
	n := 0
	for _, b := range idx.boxes {
		n += b.Len()
	}
	return n
}

// MarshalJSON writes the populated groups along with the frame count.
func (idx *Index) MarshalJSON() ([]byte, error) {
	type populated struct {
		Frames int        `json:"frames"`
		Groups []BoundBox `json:"groups"`
	}
	out := populated{Frames: idx.Len(), Groups: []BoundBox{}}
	for _, frame := range idx.Populated() {
		out.Groups = append(out.Groups, idx.boxes[frame])
	}
	return json.Marshal(out)
}
