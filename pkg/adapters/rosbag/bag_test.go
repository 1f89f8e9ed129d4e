package rosbag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/bagannotate/pkg/adapters/rosbag"
	"github.com/user/bagannotate/pkg/adapters/rosbag/bagtest"
	"github.com/user/bagannotate/pkg/ports"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func writeBag(t *testing.T, w *bagtest.Writer) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bag")
	if err := w.WriteFile(path); err != nil {
		t.Fatalf("write bag: %v", err)
	}
	return path
}

func openBag(t *testing.T, path string) *rosbag.Bag {
	t.Helper()
	bag, err := rosbag.Open(path)
	if err != nil {
		t.Fatalf("open bag: %v", err)
	}
	t.Cleanup(func() { bag.Close() })
	return bag
}

func readAll(t *testing.T, bag *rosbag.Bag, topic string) []ports.LogMessage {
	t.Helper()
	var msgs []ports.LogMessage
	err := bag.ReadMessages(context.Background(), topic, func(m ports.LogMessage) error {
		msgs = append(msgs, m)
		return nil
	})
	if err != nil {
		t.Fatalf("read messages: %v", err)
	}
	return msgs
}

func TestOpen_ReadMessages(t *testing.T) {
	for _, compression := range []string{rosbag.CompressionNone, rosbag.CompressionLZ4} {
		t.Run(compression, func(t *testing.T) {
			w := bagtest.NewWriter()
			w.Compression = compression
			w.ChunkSize = 4
			w.AddImages("/camera/image_raw", 4, 3, bagtest.Stamps(epoch, 100*time.Millisecond, 10))

			bag := openBag(t, writeBag(t, w))
			msgs := readAll(t, bag, "/camera/image_raw")

			if len(msgs) != 10 {
				t.Fatalf("expected 10 messages, got %d", len(msgs))
			}
			for i, m := range msgs {
				if m.Type != ports.TypeImage {
					t.Errorf("message %d: type %q", i, m.Type)
				}
				want := epoch.Add(time.Duration(i) * 100 * time.Millisecond)
				if !m.Timestamp.Equal(want) {
					t.Errorf("message %d: time %v, want %v", i, m.Timestamp, want)
				}
				img, err := rosbag.UnmarshalImage(m.Data)
				if err != nil {
					t.Fatalf("message %d: %v", i, err)
				}
				if img.Width != 4 || img.Height != 3 || img.Data[0] != byte(i) {
					t.Errorf("message %d: unexpected image %dx%d first byte %d", i, img.Width, img.Height, img.Data[0])
				}
			}
			if n := bag.Summarize().Messages; n != 10 {
				t.Errorf("expected 10 messages in bag, got %d", n)
			}
		})
	}
}

func TestReadMessages_SortsByTime(t *testing.T) {
	w := bagtest.NewWriter()
	w.ChunkSize = 2
	w.AddTopic("/cam", ports.TypeImage, bagtest.ImageMD5)
	order := []int{3, 0, 2, 1, 4}
	for _, n := range order {
		w.Add(bagtest.Message{Topic: "/cam", Time: epoch.Add(time.Duration(n) * time.Second), Data: []byte{byte(n)}})
	}
	// Equal times keep file order.
	w.Add(bagtest.Message{Topic: "/cam", Time: epoch.Add(4 * time.Second), Data: []byte{5}})

	msgs := readAll(t, openBag(t, writeBag(t, w)), "/cam")

	want := []byte{0, 1, 2, 3, 4, 5}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(msgs))
	}
	for i, m := range msgs {
		if m.Data[0] != want[i] {
			t.Errorf("position %d: got payload %d, want %d", i, m.Data[0], want[i])
		}
	}
}

func TestReadMessages_FiltersTopic(t *testing.T) {
	w := bagtest.NewWriter()
	w.AddImages("/cam", 2, 2, bagtest.Stamps(epoch, time.Second, 3))
	w.AddTopic("/imu", "sensor_msgs/Imu", "6a62c6daae103f4ff57a132d6f95cec2")
	for _, ts := range bagtest.Stamps(epoch, 10*time.Millisecond, 7) {
		w.Add(bagtest.Message{Topic: "/imu", Time: ts, Data: []byte{1, 2, 3}})
	}

	bag := openBag(t, writeBag(t, w))
	if n := len(readAll(t, bag, "/cam")); n != 3 {
		t.Errorf("expected 3 camera messages, got %d", n)
	}
	if n := len(readAll(t, bag, "/imu")); n != 7 {
		t.Errorf("expected 7 imu messages, got %d", n)
	}

	err := bag.ReadMessages(context.Background(), "/lidar", func(ports.LogMessage) error { return nil })
	if !errors.Is(err, rosbag.ErrUnknownTopic) {
		t.Errorf("expected ErrUnknownTopic, got %v", err)
	}
}

func TestReadMessages_CallbackErrorStops(t *testing.T) {
	w := bagtest.NewWriter()
	w.AddImages("/cam", 2, 2, bagtest.Stamps(epoch, time.Second, 5))
	bag := openBag(t, writeBag(t, w))

	stop := errors.New("stop")
	calls := 0
	err := bag.ReadMessages(context.Background(), "/cam", func(ports.LogMessage) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected callback error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestReadMessages_Cancelled(t *testing.T) {
	w := bagtest.NewWriter()
	w.AddImages("/cam", 2, 2, bagtest.Stamps(epoch, time.Second, 3))
	bag := openBag(t, writeBag(t, w))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := bag.ReadMessages(ctx, "/cam", func(ports.LogMessage) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInfo(t *testing.T) {
	w := bagtest.NewWriter()
	w.Compression = rosbag.CompressionLZ4
	w.AddImages("/camera/image_raw", 2, 2, bagtest.Stamps(epoch, 100*time.Millisecond, 11))

	bag := openBag(t, writeBag(t, w))
	data, err := bag.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}

	var s rosbag.Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if s.Messages != 11 {
		t.Errorf("expected 11 messages, got %d", s.Messages)
	}
	if s.Duration < 0.999 || s.Duration > 1.001 {
		t.Errorf("expected duration 1s, got %v", s.Duration)
	}
	if s.Compression != rosbag.CompressionLZ4 {
		t.Errorf("expected lz4 compression, got %s", s.Compression)
	}
	if len(s.Topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(s.Topics))
	}
	topic := s.Topics[0]
	if topic.Topic != "/camera/image_raw" || topic.Type != ports.TypeImage || topic.Messages != 11 {
		t.Errorf("unexpected topic summary: %+v", topic)
	}
	if topic.Frequency < 9.99 || topic.Frequency > 10.01 {
		t.Errorf("expected 10 Hz, got %v", topic.Frequency)
	}
	if len(s.Types) != 1 || s.Types[0].MD5 != bagtest.ImageMD5 {
		t.Errorf("unexpected types: %+v", s.Types)
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	notBag := filepath.Join(dir, "notes.bag")
	if err := os.WriteFile(notBag, []byte("this is not a bag file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	oldBag := filepath.Join(dir, "old.bag")
	if err := os.WriteFile(oldBag, []byte("#ROSBAG V1.2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	truncated := filepath.Join(dir, "truncated.bag")
	w := bagtest.NewWriter()
	w.AddImages("/cam", 8, 8, bagtest.Stamps(epoch, time.Second, 2))
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(truncated, data[:len(data)-10], 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"not a bag", notBag, rosbag.ErrNotBag},
		{"old version", oldBag, rosbag.ErrUnsupportedVersion},
		{"truncated", truncated, rosbag.ErrCorrupt},
		{"missing file", filepath.Join(dir, "missing.bag"), os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rosbag.Open(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEmptyBag(t *testing.T) {
	w := bagtest.NewWriter()
	w.AddTopic("/cam", ports.TypeImage, bagtest.ImageMD5)
	bag := openBag(t, writeBag(t, w))

	s := bag.Summarize()
	if s.Messages != 0 {
		t.Errorf("expected no messages, got %d", s.Messages)
	}
	if s.Duration != 0 {
		t.Errorf("expected zero duration, got %v", s.Duration)
	}
}
