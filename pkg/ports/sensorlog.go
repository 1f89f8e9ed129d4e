// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"time"
)

// SensorLog abstracts a recorded, replayable log of timestamped sensor messages.
type SensorLog interface {
	// Info returns the log-level summary as a YAML document shaped like
	// `rosbag info --yaml` output (duration, topics with type/messages/frequency, ...).
	Info() ([]byte, error)

	// ReadMessages calls fn for every message on topic in timestamp order.
	// Returning an error from fn stops the traversal and is returned as-is.
	ReadMessages(ctx context.Context, topic string, fn func(msg LogMessage) error) error

	// Close releases the underlying file.
	Close() error
}

// LogMessage is a single serialized message read from a SensorLog.
type LogMessage struct {
	Topic     string
	Type      string    // Message type, e.g. "sensor_msgs/Image"
	Timestamp time.Time // Receive time recorded in the log
	Data      []byte    // Serialized message payload
}

// Well-known image message types.
const (
	TypeImage           = "sensor_msgs/Image"
	TypeCompressedImage = "sensor_msgs/CompressedImage"
)
