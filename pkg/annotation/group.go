package annotation

import "fmt"

// Group assigns every record to a frame ordinal using the sentinel rule:
// a running counter starts at -1 and is incremented by each sentinel row
// (BoxID == 0); every row attaches to the current counter. Rows that appear
// before the first sentinel attach to frame 0.
//
// The returned slice is parallel to records. A group whose ordinal is not
// below frameCount fails with ErrIndexRange, since that signals a table that
// does not belong to the frame buffer.
func Group(records []BoxRecord, frameCount int) ([]int, error) {
	ordinals := make([]int, len(records))
	counter := -1

	for i, rec := range records {
		if rec.IsSentinel() {
			counter++
		}

		frame := counter
		if frame < 0 {
			frame = 0
		}
		if frame >= frameCount {
			return nil, fmt.Errorf("%w: row %d starts group %d but only %d frames are buffered",
				ErrIndexRange, i, frame, frameCount)
		}
		ordinals[i] = frame
	}

	return ordinals, nil
}

// SentinelCount returns the number of frame groups started in records.
func SentinelCount(records []BoxRecord) int {
	n := 0
	for _, rec := range records {
		if rec.IsSentinel() {
			n++
		}
	}
	return n
}
