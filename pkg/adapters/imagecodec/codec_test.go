package imagecodec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"github.com/user/bagannotate/pkg/adapters/rosbag"
)

func rawMessage(encoding string, width, height, step int, data []byte) rosbag.Image {
	return rosbag.Image{
		Header:   rosbag.Header{Stamp: time.Unix(1700000000, 0)},
		Width:    uint32(width),
		Height:   uint32(height),
		Encoding: encoding,
		Step:     uint32(step),
		Data:     data,
	}
}

func TestDecodeRaw_Encodings(t *testing.T) {
	red := color.RGBA{R: 200, G: 10, B: 30, A: 255}

	tests := []struct {
		encoding string
		pixel    []byte
		want     color.RGBA
	}{
		{EncodingBGR8, []byte{30, 10, 200}, red},
		{Encoding8UC3, []byte{30, 10, 200}, red},
		{EncodingRGB8, []byte{200, 10, 30}, red},
		{EncodingBGRA8, []byte{30, 10, 200, 128}, red},
		{Encoding8UC4, []byte{30, 10, 200, 0}, red},
		{EncodingRGBA8, []byte{200, 10, 30, 255}, red},
		{EncodingMono8, []byte{77}, color.RGBA{77, 77, 77, 255}},
		{Encoding8UC1, []byte{5}, color.RGBA{5, 5, 5, 255}},
		{EncodingMono16, []byte{0x34, 0x12}, color.RGBA{0x12, 0x12, 0x12, 255}},
		{Encoding16UC1, []byte{0xFF, 0xAB}, color.RGBA{0xAB, 0xAB, 0xAB, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			// 2x2 image, every pixel identical.
			data := bytes.Repeat(tt.pixel, 4)
			img, err := DecodeRaw(rawMessage(tt.encoding, 2, 2, 2*len(tt.pixel), data))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.Bounds() != image.Rect(0, 0, 2, 2) {
				t.Fatalf("unexpected bounds %v", img.Bounds())
			}
			if got := img.RGBAAt(1, 1); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeRaw_BigEndianMono16(t *testing.T) {
	msg := rawMessage(EncodingMono16, 1, 1, 2, []byte{0x12, 0x34})
	msg.IsBigEndian = 1

	img, err := DecodeRaw(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := img.RGBAAt(0, 0).R; got != 0x12 {
		t.Errorf("expected high byte 0x12, got 0x%02x", got)
	}
}

func TestDecodeRaw_RowPadding(t *testing.T) {
	// Two rows of one rgb8 pixel, each padded to 4 bytes.
	data := []byte{1, 2, 3, 0, 4, 5, 6, 0}
	img, err := DecodeRaw(rawMessage(EncodingRGB8, 1, 2, 4, data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{4, 5, 6, 255}) {
		t.Errorf("second row pixel = %v", got)
	}
}

func TestDecodeRaw_Errors(t *testing.T) {
	tests := []struct {
		name string
		msg  rosbag.Image
		want error
	}{
		{"unsupported encoding", rawMessage("yuv422", 2, 2, 4, make([]byte, 8)), ErrUnsupportedEncoding},
		{"bayer", rawMessage("bayer_rggb8", 2, 2, 2, make([]byte, 4)), ErrUnsupportedEncoding},
		{"short data", rawMessage(EncodingBGR8, 4, 4, 12, make([]byte, 20)), ErrShortData},
		{"step too small", rawMessage(EncodingBGR8, 4, 1, 6, make([]byte, 12)), ErrShortData},
		{"zero size", rawMessage(EncodingMono8, 0, 4, 0, nil), ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRaw(tt.msg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected error to wrap ErrDecode, got %v", err)
			}
		})
	}
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 60), B: 90, A: 255})
		}
	}
	return img
}

func TestCodec_DecodeCompressed(t *testing.T) {
	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, testImage()); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, testImage()); err != nil {
		t.Fatal(err)
	}

	codec := New()
	for name, payload := range map[string][]byte{"png": pngBuf.Bytes(), "bmp": bmpBuf.Bytes()} {
		t.Run(name, func(t *testing.T) {
			msg := rosbag.CompressedImage{Format: name, Data: payload, Header: rosbag.Header{Stamp: time.Unix(1, 0)}}
			img, err := codec.Decode(msg.Marshal(), true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
				t.Errorf("unexpected bounds %v", img.Bounds())
			}
			r, g, b, _ := img.At(5, 3).RGBA()
			if r>>8 != 200 || g>>8 != 180 || b>>8 != 90 {
				t.Errorf("unexpected pixel (%d, %d, %d)", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestCodec_DecodeRawMessage(t *testing.T) {
	msg := rawMessage(EncodingMono8, 3, 2, 3, []byte{1, 2, 3, 4, 5, 6})
	img, err := New().Decode(msg.Marshal(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := img.(*image.RGBA).RGBAAt(2, 1).G; got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
}

func TestCodec_DecodeErrors(t *testing.T) {
	codec := New()

	garbage := rosbag.CompressedImage{Format: "jpeg", Data: []byte("not an image"), Header: rosbag.Header{Stamp: time.Unix(1, 0)}}
	if _, err := codec.Decode(garbage.Marshal(), true); !errors.Is(err, ErrDecode) {
		t.Errorf("garbage payload: expected ErrDecode, got %v", err)
	}

	empty := rosbag.CompressedImage{Format: "jpeg", Header: rosbag.Header{Stamp: time.Unix(1, 0)}}
	if _, err := codec.Decode(empty.Marshal(), true); !errors.Is(err, ErrDecode) {
		t.Errorf("empty payload: expected ErrDecode, got %v", err)
	}

	if _, err := codec.Decode([]byte{1, 2}, false); !errors.Is(err, rosbag.ErrShortMessage) {
		t.Errorf("truncated message: expected ErrShortMessage, got %v", err)
	}
	if _, err := codec.Decode([]byte{1, 2}, false); !errors.Is(err, ErrDecode) {
		t.Errorf("truncated message: expected ErrDecode, got %v", err)
	}
}
