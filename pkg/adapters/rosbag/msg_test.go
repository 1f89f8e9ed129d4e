package rosbag

import (
	"errors"
	"testing"
	"time"
)

func TestImage_RoundTrip(t *testing.T) {
	in := Image{
		Header:   Header{Seq: 4, Stamp: time.Unix(1700000000, 5000).UTC(), FrameID: "cam"},
		Height:   2,
		Width:    3,
		Encoding: "rgb8",
		Step:     9,
		Data:     []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18},
	}

	out, err := UnmarshalImage(in.Marshal())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Header.FrameID != "cam" || !out.Header.Stamp.Equal(in.Header.Stamp) || out.Header.Seq != 4 {
		t.Errorf("header mismatch: %+v", out.Header)
	}
	if out.Width != 3 || out.Height != 2 || out.Encoding != "rgb8" || out.Step != 9 || len(out.Data) != 18 {
		t.Errorf("image mismatch: %+v", out)
	}
}

func TestCompressedImage_RoundTrip(t *testing.T) {
	in := CompressedImage{Header: Header{Stamp: time.Unix(10, 0).UTC()}, Format: "jpeg", Data: []byte{0xFF, 0xD8}}
	out, err := UnmarshalCompressedImage(in.Marshal())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Format != "jpeg" || len(out.Data) != 2 {
		t.Errorf("unexpected message: %+v", out)
	}
}

func TestUnmarshalImage_Short(t *testing.T) {
	in := Image{Header: Header{Stamp: time.Unix(1, 0)}, Encoding: "mono8", Data: make([]byte, 16)}
	data := in.Marshal()

	for _, n := range []int{0, 3, 12, len(data) - 1} {
		if _, err := UnmarshalImage(data[:n]); !errors.Is(err, ErrShortMessage) {
			t.Errorf("truncated to %d bytes: expected ErrShortMessage, got %v", n, err)
		}
	}
}
