package ports

import (
	"image"
)

// ImageDecoder turns a serialized camera message into an image.
type ImageDecoder interface {
	// Decode decodes a serialized sensor_msgs/Image payload, or a
	// sensor_msgs/CompressedImage payload when compressed is true.
	Decode(data []byte, compressed bool) (image.Image, error)
}
