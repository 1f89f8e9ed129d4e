// Package rosbag reads ROS bag files in format 2.0.
//
// Open scans the file once to learn connections, chunk positions and per-topic
// statistics. ReadMessages revisits the chunks and returns one topic's
// messages sorted by receive time, the same order as rosbag's read_messages.
package rosbag

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/user/bagannotate/pkg/ports"
)

// Connection describes one publisher connection recorded in the bag.
type Connection struct {
	ID                uint32
	Topic             string
	Type              string
	MD5Sum            string
	MessageDefinition string
}

type connStats struct {
	count       int
	first, last time.Time
}

// Bag is an opened bag file. It is safe for concurrent reads.
type Bag struct {
	path string
	file *os.File
	size int64

	conns        map[uint32]*Connection
	stats        map[uint32]*connStats
	chunks       []int64 // Offsets of chunk records
	loose        []int64 // Offsets of message records outside chunks
	compressions map[string]int
	messages     int
	start, end   time.Time
}

// Open opens and scans the bag at path.
func Open(path string) (*Bag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bag: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat bag: %w", err)
	}

	b := &Bag{
		path:         path,
		file:         f,
		size:         st.Size(),
		conns:        make(map[uint32]*Connection),
		stats:        make(map[uint32]*connStats),
		compressions: make(map[string]int),
	}
	if err := b.scan(); err != nil {
		f.Close()
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return b, nil
}

// Close closes the bag file.
func (b *Bag) Close() error {
	return b.file.Close()
}

// Path returns the file path the bag was opened from.
func (b *Bag) Path() string {
	return b.path
}

// Connections returns the connections ordered by id.
func (b *Bag) Connections() []Connection {
	conns := make([]Connection, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, *c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
	return conns
}

// StartTime returns the receive time of the earliest message.
func (b *Bag) StartTime() time.Time {
	return b.start
}

// EndTime returns the receive time of the latest message.
func (b *Bag) EndTime() time.Time {
	return b.end
}

func checkMagic(r io.Reader) error {
	buf := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrNotBag, err)
	}
	line := string(buf)
	if line == Magic {
		return nil
	}
	if strings.HasPrefix(line, versionPrefix) {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, strings.TrimSpace(line))
	}
	return ErrNotBag
}

func (b *Bag) scan() error {
	r := bufio.NewReader(io.NewSectionReader(b.file, 0, b.size))
	if err := checkMagic(r); err != nil {
		return err
	}

	offset := int64(len(Magic))
	for {
		rec, err := readRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("record at offset %d: %w", offset, err)
		}

		op, err := rec.header.op()
		if err != nil {
			return err
		}

		switch op {
		case OpChunk:
			compression, err := rec.header.string("compression")
			if err != nil {
				return err
			}
			b.chunks = append(b.chunks, offset)
			b.compressions[compression]++
			if err := b.scanChunk(rec); err != nil {
				return fmt.Errorf("chunk at offset %d: %w", offset, err)
			}
		case OpConnection:
			if err := b.addConnection(rec); err != nil {
				return err
			}
		case OpMessageData:
			b.loose = append(b.loose, offset)
			if err := b.countMessage(rec); err != nil {
				return err
			}
		case OpBagHeader, OpIndexData, OpChunkInfo:
			// Positions are rebuilt from the scan.
		default:
			return fmt.Errorf("%w: unknown op 0x%02x at offset %d", ErrCorrupt, op, offset)
		}
		offset += rec.size
	}
	return nil
}

func (b *Bag) scanChunk(rec record) error {
	return forEachChunkRecord(rec, func(inner record, op byte) error {
		switch op {
		case OpConnection:
			return b.addConnection(inner)
		case OpMessageData:
			return b.countMessage(inner)
		}
		return nil
	})
}

func forEachChunkRecord(rec record, fn func(inner record, op byte) error) error {
	compression, err := rec.header.string("compression")
	if err != nil {
		return err
	}
	size, err := rec.header.uint32("size")
	if err != nil {
		return err
	}
	data, err := decompressChunk(compression, rec.data, size)
	if err != nil {
		return err
	}

	r := bytes.NewReader(data)
	for {
		inner, err := readRecord(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		op, err := inner.header.op()
		if err != nil {
			return err
		}
		if err := fn(inner, op); err != nil {
			return err
		}
	}
}

func (b *Bag) addConnection(rec record) error {
	id, err := rec.header.uint32("conn")
	if err != nil {
		return err
	}
	if _, ok := b.conns[id]; ok {
		return nil
	}

	topic, err := rec.header.string("topic")
	if err != nil {
		return err
	}
	connHeader, err := parseHeader(rec.data)
	if err != nil {
		return fmt.Errorf("connection %d: %w", id, err)
	}

	conn := &Connection{ID: id, Topic: topic}
	conn.Type, _ = connHeader.string("type")
	conn.MD5Sum, _ = connHeader.string("md5sum")
	conn.MessageDefinition, _ = connHeader.string("message_definition")
	b.conns[id] = conn
	return nil
}

func (b *Bag) countMessage(rec record) error {
	id, err := rec.header.uint32("conn")
	if err != nil {
		return err
	}
	t, err := rec.header.time("time")
	if err != nil {
		return err
	}

	st, ok := b.stats[id]
	if !ok {
		st = &connStats{first: t, last: t}
		b.stats[id] = st
	}
	st.count++
	if t.Before(st.first) {
		st.first = t
	}
	if t.After(st.last) {
		st.last = t
	}

	if b.messages == 0 || t.Before(b.start) {
		b.start = t
	}
	if b.messages == 0 || t.After(b.end) {
		b.end = t
	}
	b.messages++
	return nil
}

// ReadMessages calls fn for every message on topic in receive-time order.
// Messages with equal times keep their order in the file.
func (b *Bag) ReadMessages(ctx context.Context, topic string, fn func(msg ports.LogMessage) error) error {
	wanted := make(map[uint32]*Connection)
	for id, c := range b.conns {
		if c.Topic == topic {
			wanted[id] = c
		}
	}
	if len(wanted) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	var msgs []ports.LogMessage
	collect := func(rec record) error {
		id, err := rec.header.uint32("conn")
		if err != nil {
			return err
		}
		conn, ok := wanted[id]
		if !ok {
			return nil
		}
		t, err := rec.header.time("time")
		if err != nil {
			return err
		}
		msgs = append(msgs, ports.LogMessage{
			Topic:     conn.Topic,
			Type:      conn.Type,
			Timestamp: t,
			Data:      rec.data,
		})
		return nil
	}

	for _, off := range b.chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := b.recordAt(off)
		if err != nil {
			return err
		}
		err = forEachChunkRecord(rec, func(inner record, op byte) error {
			if op != OpMessageData {
				return nil
			}
			return collect(inner)
		})
		if err != nil {
			return fmt.Errorf("chunk at offset %d: %w", off, err)
		}
	}
	for _, off := range b.loose {
		rec, err := b.recordAt(off)
		if err != nil {
			return err
		}
		if err := collect(rec); err != nil {
			return err
		}
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})

	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bag) recordAt(offset int64) (record, error) {
	r := bufio.NewReader(io.NewSectionReader(b.file, offset, b.size-offset))
	rec, err := readRecord(r)
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("%w: unexpected end of file", ErrCorrupt)
		}
		return record{}, fmt.Errorf("record at offset %d: %w", offset, err)
	}
	return rec, nil
}

var _ ports.SensorLog = (*Bag)(nil)
