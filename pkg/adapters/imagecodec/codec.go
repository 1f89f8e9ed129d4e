// Package imagecodec decodes camera messages into images.
//
// Raw sensor_msgs/Image payloads are converted pixel by pixel into *image.RGBA.
// Compressed payloads go through the registered image formats: JPEG, PNG and
// GIF from the standard library plus BMP, TIFF and WebP from golang.org/x/image.
package imagecodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user/bagannotate/pkg/adapters/rosbag"
	"github.com/user/bagannotate/pkg/ports"
)

// Raw pixel encodings understood by Decode.
const (
	EncodingBGR8   = "bgr8"
	EncodingRGB8   = "rgb8"
	EncodingBGRA8  = "bgra8"
	EncodingRGBA8  = "rgba8"
	EncodingMono8  = "mono8"
	EncodingMono16 = "mono16"
	Encoding8UC1   = "8UC1"
	Encoding8UC3   = "8UC3"
	Encoding8UC4   = "8UC4"
	Encoding16UC1  = "16UC1"
)

// pixelLayout describes where each color component lives within a pixel.
// Alpha channels are dropped; decoded frames are always opaque.
type pixelLayout struct {
	bytesPerPixel int
	r, g, b       int // Byte offsets
	gray16        bool
}

var layouts = map[string]pixelLayout{
	EncodingBGR8:   {bytesPerPixel: 3, r: 2, g: 1, b: 0},
	Encoding8UC3:   {bytesPerPixel: 3, r: 2, g: 1, b: 0},
	EncodingRGB8:   {bytesPerPixel: 3, r: 0, g: 1, b: 2},
	EncodingBGRA8:  {bytesPerPixel: 4, r: 2, g: 1, b: 0},
	Encoding8UC4:   {bytesPerPixel: 4, r: 2, g: 1, b: 0},
	EncodingRGBA8:  {bytesPerPixel: 4, r: 0, g: 1, b: 2},
	EncodingMono8:  {bytesPerPixel: 1, r: 0, g: 0, b: 0},
	Encoding8UC1:   {bytesPerPixel: 1, r: 0, g: 0, b: 0},
	EncodingMono16: {bytesPerPixel: 2, gray16: true},
	Encoding16UC1:  {bytesPerPixel: 2, gray16: true},
}

// Codec implements ports.ImageDecoder.
type Codec struct{}

// New creates a new codec.
func New() *Codec {
	return &Codec{}
}

// Decode decodes a serialized image message.
func (c *Codec) Decode(data []byte, compressed bool) (image.Image, error) {
	if compressed {
		msg, err := rosbag.UnmarshalCompressedImage(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return DecodeCompressed(msg.Data)
	}

	msg, err := rosbag.UnmarshalImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return DecodeRaw(msg)
}

// DecodeCompressed decodes an encoded image payload of any registered format.
func DecodeCompressed(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// DecodeRaw converts a raw sensor_msgs/Image into an *image.RGBA.
func DecodeRaw(msg rosbag.Image) (*image.RGBA, error) {
	layout, ok := layouts[msg.Encoding]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, msg.Encoding)
	}

	width, height := int(msg.Width), int(msg.Height)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrDecode, width, height)
	}

	rowBytes := width * layout.bytesPerPixel
	step := int(msg.Step)
	if step == 0 {
		step = rowBytes
	}
	if step < rowBytes {
		return nil, fmt.Errorf("%w: step %d smaller than row of %d bytes", ErrShortData, step, rowBytes)
	}
	if len(msg.Data) < step*(height-1)+rowBytes {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortData, len(msg.Data), step*height)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if msg.IsBigEndian != 0 {
		order = binary.BigEndian
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := msg.Data[y*step : y*step+rowBytes]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x := 0; x < width; x++ {
			px := row[x*layout.bytesPerPixel : (x+1)*layout.bytesPerPixel]
			o := out[x*4 : x*4+4]
			if layout.gray16 {
				v := uint8(order.Uint16(px) >> 8)
				o[0], o[1], o[2], o[3] = v, v, v, 0xFF
				continue
			}
			o[0], o[1], o[2], o[3] = px[layout.r], px[layout.g], px[layout.b], 0xFF
		}
	}
	return dst, nil
}

var _ ports.ImageDecoder = (*Codec)(nil)
