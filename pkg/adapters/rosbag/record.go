package rosbag

import (
	"bytes"
	"compress/bzip2"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/pierrec/lz4/v4"
)

// Magic is the first line of every bag in format 2.0.
const Magic = "#ROSBAG V2.0\n"

const versionPrefix = "#ROSBAG V"

// Record op codes.
const (
	OpMessageData = 0x02
	OpBagHeader   = 0x03
	OpIndexData   = 0x04
	OpChunk       = 0x05
	OpChunkInfo   = 0x06
	OpConnection  = 0x07
)

// Chunk compression names.
const (
	CompressionNone = "none"
	CompressionBZ2  = "bz2"
	CompressionLZ4  = "lz4"
)

const (
	maxHeaderLen = 1 << 20
	maxDataLen   = 1 << 31
)

// header holds the name=value fields of a record header.
type header map[string][]byte

func parseHeader(b []byte) (header, error) {
	h := make(header)
	for len(b) > 0 {
		if len(b) < 4 {
			return nil, fmt.Errorf("%w: truncated header field length", ErrCorrupt)
		}
		n := binary.LittleEndian.Uint32(b)
		b = b[4:]
		if uint64(n) > uint64(len(b)) {
			return nil, fmt.Errorf("%w: header field of %d bytes exceeds header", ErrCorrupt, n)
		}
		field := b[:n]
		b = b[n:]

		eq := bytes.IndexByte(field, '=')
		if eq < 0 {
			return nil, fmt.Errorf("%w: header field without '='", ErrCorrupt)
		}
		h[string(field[:eq])] = field[eq+1:]
	}
	return h, nil
}

func (h header) field(name string) ([]byte, error) {
	v, ok := h[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing header field %q", ErrCorrupt, name)
	}
	return v, nil
}

func (h header) op() (byte, error) {
	v, err := h.field("op")
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("%w: op field of %d bytes", ErrCorrupt, len(v))
	}
	return v[0], nil
}

func (h header) uint32(name string) (uint32, error) {
	v, err := h.field(name)
	if err != nil {
		return 0, err
	}
	if len(v) != 4 {
		return 0, fmt.Errorf("%w: field %q is %d bytes, want 4", ErrCorrupt, name, len(v))
	}
	return binary.LittleEndian.Uint32(v), nil
}

func (h header) uint64(name string) (uint64, error) {
	v, err := h.field(name)
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("%w: field %q is %d bytes, want 8", ErrCorrupt, name, len(v))
	}
	return binary.LittleEndian.Uint64(v), nil
}

func (h header) string(name string) (string, error) {
	v, err := h.field(name)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (h header) time(name string) (time.Time, error) {
	v, err := h.field(name)
	if err != nil {
		return time.Time{}, err
	}
	if len(v) != 8 {
		return time.Time{}, fmt.Errorf("%w: field %q is %d bytes, want 8", ErrCorrupt, name, len(v))
	}
	return decodeTime(v), nil
}

func decodeTime(b []byte) time.Time {
	sec := binary.LittleEndian.Uint32(b[0:4])
	nsec := binary.LittleEndian.Uint32(b[4:8])
	return time.Unix(int64(sec), int64(nsec)).UTC()
}

// record is one header/data pair.
type record struct {
	header header
	data   []byte
	size   int64 // Bytes the record occupies on disk
}

// readRecord reads the next record. It returns io.EOF only at a clean record boundary.
func readRecord(r io.Reader) (record, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return record{}, io.EOF
		}
		return record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	hlen := binary.LittleEndian.Uint32(lenBuf[:])
	if hlen > maxHeaderLen {
		return record{}, fmt.Errorf("%w: header length %d", ErrCorrupt, hlen)
	}

	hbuf := make([]byte, hlen)
	if _, err := io.ReadFull(r, hbuf); err != nil {
		return record{}, fmt.Errorf("%w: read header: %v", ErrCorrupt, err)
	}
	h, err := parseHeader(hbuf)
	if err != nil {
		return record{}, err
	}

	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return record{}, fmt.Errorf("%w: read data length: %v", ErrCorrupt, err)
	}
	dlen := binary.LittleEndian.Uint32(lenBuf[:])
	if uint64(dlen) > maxDataLen {
		return record{}, fmt.Errorf("%w: data length %d", ErrCorrupt, dlen)
	}

	data := make([]byte, dlen)
	if _, err := io.ReadFull(r, data); err != nil {
		return record{}, fmt.Errorf("%w: read data: %v", ErrCorrupt, err)
	}

	return record{
		header: h,
		data:   data,
		size:   int64(8 + int(hlen) + int(dlen)),
	}, nil
}

// decompressChunk returns the uncompressed records of a chunk.
func decompressChunk(compression string, data []byte, size uint32) ([]byte, error) {
	var r io.Reader
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionBZ2:
		r = bzip2.NewReader(bytes.NewReader(data))
	case CompressionLZ4:
		r = lz4.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, compression)
	}

	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: decompress %s chunk: %v", ErrCorrupt, compression, err)
	}
	return out, nil
}
