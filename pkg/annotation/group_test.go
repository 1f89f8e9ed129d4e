package annotation

import (
	"errors"
	"reflect"
	"testing"
)

func box(id int) BoxRecord {
	return BoxRecord{BoxID: id, Rect: Rect{X: id, Y: id, Width: 10, Height: 10}}
}

func TestGroup(t *testing.T) {
	tests := []struct {
		name       string
		ids        []int
		frameCount int
		want       []int
	}{
		{
			name:       "one group per sentinel",
			ids:        []int{0, 1, 2, 0, 1, 0},
			frameCount: 3,
			want:       []int{0, 0, 0, 1, 1, 2},
		},
		{
			name:       "rows before the first sentinel go to frame 0",
			ids:        []int{3, 4, 0, 1, 0},
			frameCount: 2,
			want:       []int{0, 0, 0, 0, 1},
		},
		{
			name:       "empty table",
			ids:        nil,
			frameCount: 5,
			want:       []int{},
		},
		{
			name:       "consecutive sentinels",
			ids:        []int{0, 0, 0},
			frameCount: 3,
			want:       []int{0, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]BoxRecord, len(tt.ids))
			for i, id := range tt.ids {
				records[i] = box(id)
			}

			got, err := Group(records, tt.frameCount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGroup_TooManySentinels(t *testing.T) {
	records := []BoxRecord{box(0), box(1), box(0), box(0)}

	_, err := Group(records, 2)
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
}

func TestGroup_NoFrames(t *testing.T) {
	_, err := Group([]BoxRecord{box(5)}, 0)
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
}

func TestSentinelCount(t *testing.T) {
	records := []BoxRecord{box(0), box(1), box(0), box(2), box(0)}
	if n := SentinelCount(records); n != 3 {
		t.Errorf("expected 3 sentinels, got %d", n)
	}
}
