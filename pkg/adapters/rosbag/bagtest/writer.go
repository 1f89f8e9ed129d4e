// Package bagtest writes small ROS bag files for tests.
package bagtest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pierrec/lz4/v4"

	"github.com/user/bagannotate/pkg/adapters/rosbag"
)

// Well-known checksums of the image message types.
const (
	ImageMD5           = "060021388200f6f0f447d0fcd9c64743"
	CompressedImageMD5 = "8f7a12909da2c9d3332d540a0977563f"
)

// Message is one message to be written.
type Message struct {
	Topic string
	Time  time.Time
	Data  []byte
}

// Writer accumulates connections and messages and writes them as a bag.
type Writer struct {
	// Compression is the chunk compression: "none" (default) or "lz4".
	Compression string
	// ChunkSize is the number of messages per chunk (default 16).
	ChunkSize int

	conns    []conn
	byTopic  map[string]uint32
	messages []Message
}

type conn struct {
	id    uint32
	topic string
	typ   string
	md5   string
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{byTopic: make(map[string]uint32)}
}

// AddTopic registers a topic with its message type.
func (w *Writer) AddTopic(topic, msgType, md5 string) {
	if _, ok := w.byTopic[topic]; ok {
		return
	}
	id := uint32(len(w.conns))
	w.byTopic[topic] = id
	w.conns = append(w.conns, conn{id: id, topic: topic, typ: msgType, md5: md5})
}

// Add appends a message. The topic must have been registered.
func (w *Writer) Add(msg Message) {
	w.messages = append(w.messages, msg)
}

// AddImages registers topic as sensor_msgs/Image and adds one mono8 frame per
// timestamp. Frame i is filled with the byte value i.
func (w *Writer) AddImages(topic string, width, height int, stamps []time.Time) {
	w.AddTopic(topic, "sensor_msgs/Image", ImageMD5)
	for i, t := range stamps {
		pixels := bytes.Repeat([]byte{byte(i)}, width*height)
		img := rosbag.Image{
			Header:   rosbag.Header{Seq: uint32(i), Stamp: t, FrameID: "camera"},
			Height:   uint32(height),
			Width:    uint32(width),
			Encoding: "mono8",
			Step:     uint32(width),
			Data:     pixels,
		}
		w.Add(Message{Topic: topic, Time: t, Data: img.Marshal()})
	}
}

// AddCompressedImages registers topic as sensor_msgs/CompressedImage and adds
// one message per payload.
func (w *Writer) AddCompressedImages(topic, format string, payloads [][]byte, stamps []time.Time) {
	w.AddTopic(topic, "sensor_msgs/CompressedImage", CompressedImageMD5)
	for i, t := range stamps {
		img := rosbag.CompressedImage{
			Header: rosbag.Header{Seq: uint32(i), Stamp: t, FrameID: "camera"},
			Format: format,
			Data:   payloads[i],
		}
		w.Add(Message{Topic: topic, Time: t, Data: img.Marshal()})
	}
}

// Stamps returns n times starting at start spaced by step.
func Stamps(start time.Time, step time.Duration, n int) []time.Time {
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * step)
	}
	return ts
}

type chunkInfo struct {
	pos        uint64
	start, end time.Time
	counts     map[uint32]uint32
}

// Bytes renders the bag.
func (w *Writer) Bytes() ([]byte, error) {
	compression := w.Compression
	if compression == "" {
		compression = rosbag.CompressionNone
	}
	chunkSize := w.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 16
	}

	var out bytes.Buffer
	out.WriteString(rosbag.Magic)

	// Bag header is rewritten once the index position is known.
	headerPos := out.Len()
	writeBagHeader(&out, 0, 0, 0)

	var infos []chunkInfo
	for startIdx := 0; startIdx < len(w.messages); startIdx += chunkSize {
		endIdx := startIdx + chunkSize
		if endIdx > len(w.messages) {
			endIdx = len(w.messages)
		}
		info, err := w.writeChunk(&out, compression, w.messages[startIdx:endIdx])
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	indexPos := out.Len()
	for _, c := range w.conns {
		writeConnection(&out, c)
	}
	for _, info := range infos {
		writeChunkInfo(&out, info)
	}

	data := out.Bytes()
	var hdr bytes.Buffer
	writeBagHeader(&hdr, uint64(indexPos), uint32(len(w.conns)), uint32(len(infos)))
	copy(data[headerPos:], hdr.Bytes())
	return data, nil
}

// WriteFile renders the bag to path.
func (w *Writer) WriteFile(path string) error {
	data, err := w.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (w *Writer) writeChunk(out *bytes.Buffer, compression string, msgs []Message) (chunkInfo, error) {
	info := chunkInfo{pos: uint64(out.Len()), counts: make(map[uint32]uint32)}

	var body bytes.Buffer
	seen := make(map[uint32]bool)
	offsets := make([]uint32, len(msgs))
	for i, m := range msgs {
		id, ok := w.byTopic[m.Topic]
		if !ok {
			return info, fmt.Errorf("bagtest: topic %s not registered", m.Topic)
		}
		if !seen[id] {
			writeConnection(&body, w.conns[id])
			seen[id] = true
		}
		offsets[i] = uint32(body.Len())
		writeRecord(&body, []field{
			{"op", []byte{rosbag.OpMessageData}},
			{"conn", u32(id)},
			{"time", stamp(m.Time)},
		}, m.Data)

		info.counts[id]++
		if i == 0 || m.Time.Before(info.start) {
			info.start = m.Time
		}
		if i == 0 || m.Time.After(info.end) {
			info.end = m.Time
		}
	}

	payload := body.Bytes()
	switch compression {
	case rosbag.CompressionNone:
	case rosbag.CompressionLZ4:
		var zbuf bytes.Buffer
		zw := lz4.NewWriter(&zbuf)
		if _, err := zw.Write(payload); err != nil {
			return info, fmt.Errorf("bagtest: lz4: %w", err)
		}
		if err := zw.Close(); err != nil {
			return info, fmt.Errorf("bagtest: lz4: %w", err)
		}
		payload = zbuf.Bytes()
	default:
		return info, fmt.Errorf("bagtest: cannot write %q chunks", compression)
	}

	writeRecord(out, []field{
		{"op", []byte{rosbag.OpChunk}},
		{"compression", []byte(compression)},
		{"size", u32(uint32(body.Len()))},
	}, payload)

	ids := make([]uint32, 0, len(info.counts))
	for id := range info.counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		writeIndexData(out, id, msgs, offsets, w.byTopic)
	}
	return info, nil
}

type field struct {
	name  string
	value []byte
}

func writeRecord(out *bytes.Buffer, fields []field, data []byte) {
	var h bytes.Buffer
	writeFields(&h, fields)
	out.Write(u32(uint32(h.Len())))
	out.Write(h.Bytes())
	out.Write(u32(uint32(len(data))))
	out.Write(data)
}

func writeBagHeader(out *bytes.Buffer, indexPos uint64, connCount, chunkCount uint32) {
	var h bytes.Buffer
	writeRecord(&h, []field{
		{"op", []byte{rosbag.OpBagHeader}},
		{"index_pos", u64(indexPos)},
		{"conn_count", u32(connCount)},
		{"chunk_count", u32(chunkCount)},
	}, nil)

	// The header record is padded with spaces to 4096 bytes.
	rec := h.Bytes()[:h.Len()-4]
	pad := 4096 - len(rec) - 4
	out.Write(rec)
	out.Write(u32(uint32(pad)))
	out.Write(bytes.Repeat([]byte{' '}, pad))
}

func writeConnection(out *bytes.Buffer, c conn) {
	var data bytes.Buffer
	writeFields(&data, []field{
		{"topic", []byte(c.topic)},
		{"type", []byte(c.typ)},
		{"md5sum", []byte(c.md5)},
		{"message_definition", []byte("# generated by bagtest\n")},
	})
	writeRecord(out, []field{
		{"op", []byte{rosbag.OpConnection}},
		{"conn", u32(c.id)},
		{"topic", []byte(c.topic)},
	}, data.Bytes())
}

func writeIndexData(out *bytes.Buffer, id uint32, msgs []Message, offsets []uint32, byTopic map[string]uint32) {
	var data bytes.Buffer
	count := uint32(0)
	for i, m := range msgs {
		if byTopic[m.Topic] != id {
			continue
		}
		data.Write(stamp(m.Time))
		data.Write(u32(offsets[i]))
		count++
	}
	writeRecord(out, []field{
		{"op", []byte{rosbag.OpIndexData}},
		{"ver", u32(1)},
		{"conn", u32(id)},
		{"count", u32(count)},
	}, data.Bytes())
}

func writeChunkInfo(out *bytes.Buffer, info chunkInfo) {
	var data bytes.Buffer
	ids := make([]uint32, 0, len(info.counts))
	for id := range info.counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		data.Write(u32(id))
		data.Write(u32(info.counts[id]))
	}
	writeRecord(out, []field{
		{"op", []byte{rosbag.OpChunkInfo}},
		{"ver", u32(1)},
		{"chunk_pos", u64(info.pos)},
		{"start_time", stamp(info.start)},
		{"end_time", stamp(info.end)},
		{"count", u32(uint32(len(ids)))},
	}, data.Bytes())
}

func writeFields(out *bytes.Buffer, fields []field) {
	for _, f := range fields {
		out.Write(u32(uint32(len(f.name) + 1 + len(f.value))))
		out.WriteString(f.name)
		out.WriteByte('=')
		out.Write(f.value)
	}
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func stamp(t time.Time) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], uint32(t.Unix()))
	binary.LittleEndian.PutUint32(b[4:8], uint32(t.Nanosecond()))
	return b
}
