package rosbag

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Header is std_msgs/Header.
type Header struct {
	Seq     uint32
	Stamp   time.Time
	FrameID string
}

// Image is sensor_msgs/Image.
type Image struct {
	Header      Header
	Height      uint32
	Width       uint32
	Encoding    string
	IsBigEndian uint8
	Step        uint32 // Row length in bytes
	Data        []byte
}

// CompressedImage is sensor_msgs/CompressedImage.
type CompressedImage struct {
	Header Header
	Format string
	Data   []byte
}

// UnmarshalImage decodes a ROS1-serialized sensor_msgs/Image.
func UnmarshalImage(data []byte) (Image, error) {
	d := decoder{buf: data}
	var img Image
	img.Header = d.header()
	img.Height = d.uint32()
	img.Width = d.uint32()
	img.Encoding = d.string()
	img.IsBigEndian = d.uint8()
	img.Step = d.uint32()
	img.Data = d.bytes()
	if d.err != nil {
		return Image{}, fmt.Errorf("sensor_msgs/Image: %w", d.err)
	}
	return img, nil
}

// UnmarshalCompressedImage decodes a ROS1-serialized sensor_msgs/CompressedImage.
func UnmarshalCompressedImage(data []byte) (CompressedImage, error) {
	d := decoder{buf: data}
	var img CompressedImage
	img.Header = d.header()
	img.Format = d.string()
	img.Data = d.bytes()
	if d.err != nil {
		return CompressedImage{}, fmt.Errorf("sensor_msgs/CompressedImage: %w", d.err)
	}
	return img, nil
}

// Marshal serializes the image in ROS1 wire format.
func (m Image) Marshal() []byte {
	var e encoder
	e.header(m.Header)
	e.uint32(m.Height)
	e.uint32(m.Width)
	e.string(m.Encoding)
	e.buf.WriteByte(m.IsBigEndian)
	e.uint32(m.Step)
	e.bytes(m.Data)
	return e.buf.Bytes()
}

// Marshal serializes the compressed image in ROS1 wire format.
func (m CompressedImage) Marshal() []byte {
	var e encoder
	e.header(m.Header)
	e.string(m.Format)
	e.bytes(m.Data)
	return e.buf.Bytes()
}

// decoder reads little-endian ROS1 primitives and keeps the first error.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.buf)-d.off < n {
		d.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrShortMessage, n, d.off, len(d.buf)-d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) uint8() uint8 {
	b := d.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) uint32() uint32 {
	b := d.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) bytes() []byte {
	n := d.uint32()
	if d.err != nil {
		return nil
	}
	if uint64(n) > uint64(len(d.buf)-d.off) {
		d.err = fmt.Errorf("%w: array of %d bytes at offset %d", ErrShortMessage, n, d.off)
		return nil
	}
	return d.next(int(n))
}

func (d *decoder) string() string {
	return string(d.bytes())
}

func (d *decoder) header() Header {
	var h Header
	h.Seq = d.uint32()
	sec := d.uint32()
	nsec := d.uint32()
	h.Stamp = time.Unix(int64(sec), int64(nsec)).UTC()
	h.FrameID = d.string()
	return h
}

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) bytes(b []byte) {
	e.uint32(uint32(len(b)))
	e.buf.Write(b)
}

func (e *encoder) string(s string) {
	e.bytes([]byte(s))
}

func (e *encoder) header(h Header) {
	e.uint32(h.Seq)
	e.uint32(uint32(h.Stamp.Unix()))
	e.uint32(uint32(h.Stamp.Nanosecond()))
	e.string(h.FrameID)
}
